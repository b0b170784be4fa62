// Package store is the Postgres persistence layer. All operations return
// apperr kinds for the failure modes callers are expected to branch on
// (NotFound, Forbidden, Conflict); everything else comes back wrapped.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
