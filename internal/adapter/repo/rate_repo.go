package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fotomagic/internal/domain"
)

// RateRepositoryPG reads the purchasable bundles from PostgreSQL.
type RateRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new RateRepositoryPG.
func NewRateRepository(pool *pgxpool.Pool) *RateRepositoryPG {
	return &RateRepositoryPG{pool: pool}
}

// ListRates returns all bundles of the given kind, cheapest first.
func (r *RateRepositoryPG) ListRates(ctx context.Context, kind domain.RateKind) ([]domain.Rate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, amount, cost, COALESCE(label, ''), kind FROM rates WHERE kind = $1 ORDER BY cost`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.Rate
	for rows.Next() {
		var rate domain.Rate
		if err := rows.Scan(&rate.ID, &rate.Amount, &rate.Cost, &rate.Label, &rate.Kind); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// GetRate fetches one bundle by id.
func (r *RateRepositoryPG) GetRate(ctx context.Context, id int64) (*domain.Rate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, amount, cost, COALESCE(label, ''), kind FROM rates WHERE id = $1`, id)

	var rate domain.Rate
	if err := row.Scan(&rate.ID, &rate.Amount, &rate.Cost, &rate.Label, &rate.Kind); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}
