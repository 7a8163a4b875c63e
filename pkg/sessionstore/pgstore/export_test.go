package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/userland/pkg/pg"
)

// SetConnect replaces the pool constructor used for lazy connections.
func (s *Store) SetConnect(fn func(context.Context, pg.Config) (*pgxpool.Pool, error)) {
	s.connect = fn
}
