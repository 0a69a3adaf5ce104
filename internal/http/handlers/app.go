package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fotomagic/internal/domain"
	"fotomagic/internal/infra"
	"fotomagic/internal/payment"
	"fotomagic/internal/providers/unify"
)

// Generator runs one generation request to a terminal outcome.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) domain.GenerationOutcome
}

// MotionLister serves the animation preset catalog.
type MotionLister interface {
	Motions(ctx context.Context) ([]unify.Motion, error)
}

// RateStore reads purchasable bundles.
type RateStore interface {
	GetRate(ctx context.Context, id int64) (*domain.Rate, error)
	ListRates(ctx context.Context, kind domain.RateKind) ([]domain.Rate, error)
}

// PaymentLinker opens a payment with a provider and returns its link.
type PaymentLinker interface {
	CreateCardPayment(ctx context.Context, cost int, description string) (payment.Link, error)
	CreateCryptoPayment(ctx context.Context, cost int) (payment.Link, error)
}

// PaymentWatching starts and cancels background payment watches.
type PaymentWatching interface {
	Start(ctx context.Context, watch domain.PaymentWatch)
	CancelForUser(userID int64) bool
}

// MessageBroadcaster fans a message out to the active audience.
type MessageBroadcaster interface {
	Send(ctx context.Context, text string) (int, error)
}

// App carries the handler dependencies.
type App struct {
	Generator Generator
	Motions   MotionLister
	Rates     RateStore
	Store     domain.Storage
	Payments  PaymentLinker
	Watcher   PaymentWatching
	Broadcast MessageBroadcaster
	Scheduler domain.Scheduler
	Logger    infra.Logger

	PaymentInterval time.Duration
	PaymentDeadline time.Duration
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
