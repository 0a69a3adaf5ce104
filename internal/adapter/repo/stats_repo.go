package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepositoryPG maintains the single-row income aggregate.
type StatsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepositoryPG.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepositoryPG {
	return &StatsRepositoryPG{pool: pool}
}

// AddIncome records a settled payment in the running totals.
func (r *StatsRepositoryPG) AddIncome(ctx context.Context, amount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE stats SET income = income + $1, purchases = purchases + 1`, amount)
	return err
}
