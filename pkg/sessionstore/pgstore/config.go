package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface the store needs. *pgxpool.Pool, *pgx.Conn and
// pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds PostgreSQL store configuration.
type Config struct {
	// Table is the session table, optionally schema qualified ("auth.sessions").
	Table string `env:"SESSION_PG_TABLE"`

	// DB is used when set; the connection fields are then ignored.
	DB DB

	ConnectionString string            `env:"SESSION_PG_CONN_URL"`
	Username         string            `env:"SESSION_PG_USERNAME"`
	Password         string            `env:"SESSION_PG_PASSWORD"`
	RuntimeParams    map[string]string `env:"SESSION_PG_RUNTIME_PARAMS"`
}

// Validate reports missing required options.
func (c Config) Validate() error {
	if c.Table == "" {
		return ErrTableRequired
	}
	if c.DB == nil && (c.ConnectionString == "" || c.Username == "" || c.Password == "") {
		return ErrConnectionRequired
	}
	return nil
}
