package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeeplinkRepositoryPG tracks marketing deep link attribution in PostgreSQL.
type DeeplinkRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDeeplinkRepository creates a new DeeplinkRepositoryPG.
func NewDeeplinkRepository(pool *pgxpool.Pool) *DeeplinkRepositoryPG {
	return &DeeplinkRepositoryPG{pool: pool}
}

// UpdateDeeplinkEarn credits a purchase to the deep link the payer arrived
// through. Unknown links are ignored; attribution must never fail a payment.
func (r *DeeplinkRepositoryPG) UpdateDeeplinkEarn(ctx context.Context, link string, amount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE deeplinks SET earned = earned + $1 WHERE link = $2`, amount, link)
	return err
}

// RecordDeeplinkEntry counts a first contact through the deep link.
func (r *DeeplinkRepositoryPG) RecordDeeplinkEntry(ctx context.Context, link string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE deeplinks SET entries = entries + 1 WHERE link = $1`, link)
	return err
}
