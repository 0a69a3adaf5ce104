package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fotomagic/internal/domain"
)

// UserRepositoryPG implements the user side of domain.Storage backed by
// PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// balanceColumns whitelists the user counters IncrementUserValue may touch.
// Column names are never built from caller input directly.
var balanceColumns = map[domain.BalanceField]string{
	domain.FieldRestores:       "restores",
	domain.FieldAnimates:       "animates",
	domain.FieldAnimatesEarned: "animates_earned",
	domain.FieldReferrals:      "referrals",
	domain.FieldRestoresDone:   "restores_done",
	domain.FieldAnimatesDone:   "animates_done",
}

const userColumns = `id, username, name, restores, animates, referrer_id, referrals, animates_earned, COALESCE(deeplink, ''), restores_done, animates_done, active, entry, activity`

// UpsertUser registers a user at first contact or refreshes the activity
// timestamp of a returning one. Referrer and deep link attribution are only
// recorded on first insert.
func (r *UserRepositoryPG) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
INSERT INTO users (id, username, name, restores, animates, referrer_id, deeplink, active, entry, activity)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), TRUE, NOW(), NOW())
ON CONFLICT (id) DO UPDATE
SET username = EXCLUDED.username,
    name = EXCLUDED.name,
    active = TRUE,
    activity = NOW()
RETURNING ` + userColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Name,
		domain.DefaultRestoreBalance,
		domain.DefaultAnimateBalance,
		user.ReferrerID,
		user.DeeplinkTag,
	)
	return scanUser(row)
}

// GetUser fetches a user by telegram id.
func (r *UserRepositoryPG) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// IncrementUserValue adds delta to one of the whitelisted user counters.
func (r *UserRepositoryPG) IncrementUserValue(ctx context.Context, id int64, field domain.BalanceField, delta int) error {
	column, ok := balanceColumns[field]
	if !ok {
		return fmt.Errorf("repo: unknown balance field %q", field)
	}
	query := fmt.Sprintf(`UPDATE users SET %s = %s + $1, activity = NOW() WHERE id = $2`, column, column)
	tag, err := r.pool.Exec(ctx, query, delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive flips the delivery flag for a user.
func (r *UserRepositoryPG) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET active = $1 WHERE id = $2`, active, id)
	return err
}

// ListActiveUserIDs returns the broadcast audience.
func (r *UserRepositoryPG) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Name,
		&u.Restores, &u.Animates,
		&u.ReferrerID, &u.Referrals, &u.AnimatesEarned,
		&u.DeeplinkTag,
		&u.RestoresDone, &u.AnimatesDone,
		&u.Active, &u.Entry, &u.Activity,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
