package repo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the per-table repositories into the single persistence
// gateway the orchestration core consumes.
type Store struct {
	*UserRepositoryPG
	*DeeplinkRepositoryPG
	*StatsRepositoryPG
}

// NewStore wires all repositories onto one pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		UserRepositoryPG:     NewUserRepository(pool),
		DeeplinkRepositoryPG: NewDeeplinkRepository(pool),
		StatsRepositoryPG:    NewStatsRepository(pool),
	}
}
