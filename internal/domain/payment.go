package domain

import (
	"strconv"
	"time"
)

// PaymentChannel selects which provider settles the payment.
type PaymentChannel string

const (
	PaymentChannelCard   PaymentChannel = "card"
	PaymentChannelCrypto PaymentChannel = "crypto"
)

// Defaults for background payment watching.
const (
	DefaultPaymentInterval = 6 * time.Second
	DefaultPaymentDeadline = 15 * time.Minute
)

// PaymentWatch carries everything a watcher needs to follow one payment to a
// terminal state. It is consumed by exactly one watcher and never re-entered.
type PaymentWatch struct {
	PaymentID string
	UserID    int64
	Amount    int // purchased units
	Cost      int // price paid, RUB
	Kind      RateKind
	Channel   PaymentChannel

	Interval time.Duration
	Deadline time.Duration
}

// TaskKey is the registry key enforcing one live watcher per user.
func (w PaymentWatch) TaskKey() string {
	return "payment:" + strconv.FormatInt(w.UserID, 10)
}

// Normalize fills zero-valued timing fields with the defaults.
func (w *PaymentWatch) Normalize() {
	if w.Interval <= 0 {
		w.Interval = DefaultPaymentInterval
	}
	if w.Deadline <= 0 {
		w.Deadline = DefaultPaymentDeadline
	}
}
