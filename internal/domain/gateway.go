package domain

import (
	"context"
	"time"
)

// Storage is the persistence collaborator consumed by the orchestration core.
// Each call applies atomically; the core never spans transactions across
// multiple calls.
type Storage interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	IncrementUserValue(ctx context.Context, id int64, field BalanceField, delta int) error
	AddIncome(ctx context.Context, amount int) error
	UpdateDeeplinkEarn(ctx context.Context, link string, amount int) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Notifier delivers messages to users. Delivery may fail (the user blocked
// the bot); callers map that failure to SetActive(id, false).
type Notifier interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}

// PaymentChecker answers idempotent status queries for in-flight payments.
type PaymentChecker interface {
	CheckCardPayment(ctx context.Context, id string) (bool, error)
	CheckCryptoPayment(ctx context.Context, id string) (bool, error)
}

// Scheduler fires a callback once at the given instant. The core hands it a
// thunk and never queries it back.
type Scheduler interface {
	ScheduleAt(t time.Time, run func())
}
