package pgstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/userland/pkg/pg"
	"github.com/dmitrymomot/userland/pkg/session"
)

// Store is a session.Handler backed by one PostgreSQL table. It keeps no
// per-session state, so one Store can serve every session through
// session.Shared.
type Store struct {
	cfg   Config
	table string
	now   func() time.Time

	connect func(context.Context, pg.Config) (*pgxpool.Pool, error)

	mu   sync.Mutex
	db   DB
	pool *pgxpool.Pool
}

var _ session.Handler = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source for written_at and GC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New validates cfg and creates a store. No connection is made until Open.
func New(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:     cfg,
		table:   sanitizeTable(cfg.Table),
		now:     time.Now,
		connect: pg.Connect,
		db:      cfg.DB,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table returns the configured table name.
func (s *Store) Table() string { return s.cfg.Table }

// Open makes sure a connection is available.
func (s *Store) Open(ctx context.Context, _, _ string) error {
	_, err := s.conn(ctx)
	return err
}

// Close is a no-op; the pool outlives single sessions. See Shutdown.
func (s *Store) Close(context.Context) error {
	return nil
}

// Read returns the data column of the row for id.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = db.QueryRow(ctx, `SELECT data FROM `+s.table+` WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, session.ErrNotFound
		}
		return nil, s.wrap(err)
	}
	return data, nil
}

// Write upserts the row for id with the current write time.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	_, err = db.Exec(ctx, `INSERT INTO `+s.table+` (id, data, written_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, written_at = EXCLUDED.written_at`,
		id, data, s.now().Unix())
	return s.wrap(err)
}

// Destroy deletes the row for id.
func (s *Store) Destroy(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return s.wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// GC deletes rows written more than maxLifetime ago, for the whole table.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	cutoff := s.now().Unix() - int64(maxLifetime/time.Second)
	_, err = db.Exec(ctx, `DELETE FROM `+s.table+` WHERE written_at < $1`, cutoff)
	return s.wrap(err)
}

// EnsureSchema creates the table and its written_at index when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		id TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		written_at BIGINT NOT NULL
	)`); err != nil {
		return err
	}

	index := pgx.Identifier{indexName(s.cfg.Table)}.Sanitize()
	_, err = db.Exec(ctx, `CREATE INDEX IF NOT EXISTS `+index+` ON `+s.table+` (written_at)`)
	return err
}

// Healthcheck pings the database.
func (s *Store) Healthcheck(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if p, ok := db.(pg.Pinger); ok {
		return pg.Healthcheck(p)(ctx)
	}
	var one int
	if err := db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return errors.Join(pg.ErrHealthcheckFailed, err)
	}
	return nil
}

// Shutdown closes a pool opened by the store. A pool passed in Config.DB is
// left to its owner.
func (s *Store) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
		s.db = nil
	}
}

func (s *Store) conn(ctx context.Context) (DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	pool, err := s.connect(ctx, pg.Config{
		ConnectionString: s.cfg.ConnectionString,
		Username:         s.cfg.Username,
		Password:         s.cfg.Password,
		RuntimeParams:    s.cfg.RuntimeParams,
		RetryAttempts:    1,
	})
	if err != nil {
		return nil, err
	}
	s.pool = pool
	s.db = pool
	return pool, nil
}

func (s *Store) wrap(err error) error {
	if pg.IsUndefinedTableError(err) {
		return errors.Join(ErrSchemaMissing, err)
	}
	return err
}

func sanitizeTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func indexName(table string) string {
	parts := strings.Split(table, ".")
	return parts[len(parts)-1] + "_written_at_idx"
}
