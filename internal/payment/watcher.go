package payment

import (
	"context"
	"errors"
	"time"

	"fotomagic/internal/domain"
	"fotomagic/internal/infra"
	"fotomagic/internal/notify"
	"fotomagic/internal/tasks"
)

// Watcher follows in-flight payments to settlement in the background. Each
// watch runs as a named task keyed by the payer, so a newer payment attempt
// silently supersedes the previous one.
type Watcher struct {
	registry *tasks.Registry
	checker  domain.PaymentChecker
	store    domain.Storage
	notifier domain.Notifier
	logger   infra.Logger
}

// NewWatcher wires the watcher to its collaborators.
func NewWatcher(registry *tasks.Registry, checker domain.PaymentChecker, store domain.Storage, notifier domain.Notifier, logger infra.Logger) *Watcher {
	return &Watcher{
		registry: registry,
		checker:  checker,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Start registers a background watch for the payment, canceling any earlier
// watch for the same user.
func (w *Watcher) Start(ctx context.Context, watch domain.PaymentWatch) {
	watch.Normalize()
	w.registry.StartUnique(ctx, watch.TaskKey(), func(taskCtx context.Context, h *tasks.Handle) {
		w.run(taskCtx, h, watch)
	})
}

// CancelForUser cooperatively stops the user's in-flight watch, if any.
func (w *Watcher) CancelForUser(userID int64) bool {
	return w.registry.Cancel(domain.PaymentWatch{UserID: userID}.TaskKey())
}

// run polls the payment channel until settlement or deadline. The first check
// happens one interval after start; a payment cannot settle instantly.
func (w *Watcher) run(ctx context.Context, h *tasks.Handle, watch domain.PaymentWatch) {
	ctx, cancel := context.WithTimeout(ctx, watch.Deadline)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				// Deliberately silent toward the user: no effect is applied
				// and no timeout message is sent.
				w.logger.Warn().
					Str("payment_id", watch.PaymentID).
					Int64("user_id", watch.UserID).
					Msg("payment: watch expired without settlement")
			}
			return
		case <-time.After(watch.Interval):
		}

		paid, err := w.check(ctx, watch)
		if err != nil {
			if ctx.Err() != nil {
				continue // terminal reason is decided by the select above
			}
			w.logger.Warn().Err(err).
				Str("payment_id", watch.PaymentID).
				Msg("payment: status check failed")
			continue
		}
		if !paid {
			continue
		}

		// Once settlement is observed the task leaves its cancellable phase;
		// a superseding watch can no longer interrupt the effects below, and
		// if this task was already superseded it must apply nothing.
		if !h.MarkSettling() {
			w.logger.Debug().
				Str("payment_id", watch.PaymentID).
				Msg("payment: settled after being superseded, skipping effects")
			return
		}
		w.settle(context.WithoutCancel(ctx), watch)
		return
	}
}

func (w *Watcher) check(ctx context.Context, watch domain.PaymentWatch) (bool, error) {
	if watch.Channel == domain.PaymentChannelCrypto {
		return w.checker.CheckCryptoPayment(ctx, watch.PaymentID)
	}
	return w.checker.CheckCardPayment(ctx, watch.PaymentID)
}

// settle applies the purchase: income, deep link earnings, referral bonus,
// payer balance, then the success notification. Each storage call is atomic
// at the collaborator boundary; the sequence itself runs detached from the
// watch deadline so it cannot be cut off mid-way.
func (w *Watcher) settle(ctx context.Context, watch domain.PaymentWatch) {
	user, err := w.store.GetUser(ctx, watch.UserID)
	if err != nil {
		w.logger.Error().Err(err).
			Int64("user_id", watch.UserID).
			Msg("payment: settlement aborted, payer lookup failed")
		return
	}

	if err := w.store.AddIncome(ctx, watch.Cost); err != nil {
		w.logger.Error().Err(err).Msg("payment: record income failed")
	}
	if user.DeeplinkTag != "" {
		if err := w.store.UpdateDeeplinkEarn(ctx, user.DeeplinkTag, watch.Cost); err != nil {
			w.logger.Error().Err(err).
				Str("deeplink", user.DeeplinkTag).
				Msg("payment: deeplink earn failed")
		}
	}
	if user.ReferrerID != nil {
		// The referral bonus is always one animation unit, regardless of
		// what the referred user bought.
		if err := w.store.IncrementUserValue(ctx, *user.ReferrerID, domain.FieldAnimates, 1); err != nil {
			w.logger.Error().Err(err).Msg("payment: referral bonus failed")
		}
		if err := w.store.IncrementUserValue(ctx, *user.ReferrerID, domain.FieldAnimatesEarned, 1); err != nil {
			w.logger.Error().Err(err).Msg("payment: referral counter failed")
		}
	}

	field := domain.FieldRestores
	if watch.Kind == domain.RateAnimate {
		field = domain.FieldAnimates
	}
	if err := w.store.IncrementUserValue(ctx, watch.UserID, field, watch.Amount); err != nil {
		w.logger.Error().Err(err).
			Int64("user_id", watch.UserID).
			Msg("payment: crediting purchase failed")
	}

	if err := w.notifier.SendMessage(ctx, watch.UserID, notify.PurchaseMessage(watch.Amount, watch.Kind)); err != nil {
		// Delivery failure is the signal that the user blocked the bot.
		if err := w.store.SetActive(ctx, watch.UserID, false); err != nil {
			w.logger.Error().Err(err).
				Int64("user_id", watch.UserID).
				Msg("payment: deactivating unreachable user failed")
		}
	}

	w.logger.Info().
		Str("payment_id", watch.PaymentID).
		Int64("user_id", watch.UserID).
		Int("amount", watch.Amount).
		Int("cost", watch.Cost).
		Str("kind", string(watch.Kind)).
		Msg("payment: settled")
}
