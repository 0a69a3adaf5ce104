package broadcast

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"fotomagic/internal/domain"
	"fotomagic/internal/infra"
)

// UserLister yields the audience of a broadcast.
type UserLister interface {
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
}

// Broadcaster fans a message out to every active user, throttled to stay
// under the messenger's flood limits. Individual delivery failures deactivate
// the recipient and never abort the run.
type Broadcaster struct {
	users     UserLister
	store     domain.Storage
	notifier  domain.Notifier
	perSecond int
	workers   int
	logger    infra.Logger
}

// New builds a broadcaster sending at most perSecond messages per second.
func New(users UserLister, store domain.Storage, notifier domain.Notifier, perSecond int, logger infra.Logger) *Broadcaster {
	if perSecond <= 0 {
		perSecond = 25
	}
	return &Broadcaster{
		users:     users,
		store:     store,
		notifier:  notifier,
		perSecond: perSecond,
		workers:   8,
		logger:    logger,
	}
}

// Send delivers text to all active users and reports how many deliveries
// succeeded. It returns an error only when the audience cannot be listed or
// the context is canceled mid-run.
func (b *Broadcaster) Send(ctx context.Context, text string) (int, error) {
	ids, err := b.users.ListActiveUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	limiter := rate.NewLimiter(rate.Limit(b.perSecond), 1)
	var delivered atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			if err := b.notifier.SendMessage(gctx, id, text); err != nil {
				b.logger.Debug().Err(err).Int64("user_id", id).Msg("broadcast: delivery failed, deactivating")
				if err := b.store.SetActive(gctx, id, false); err != nil {
					b.logger.Error().Err(err).Int64("user_id", id).Msg("broadcast: deactivation failed")
				}
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	err = g.Wait()

	b.logger.Info().
		Int("audience", len(ids)).
		Int64("delivered", delivered.Load()).
		Msg("broadcast: finished")
	return int(delivered.Load()), err
}
