package sessionbuilder

import (
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrymomot/userland/pkg/serializer"
	"github.com/dmitrymomot/userland/pkg/session"
	"github.com/dmitrymomot/userland/pkg/sessionstore/filestore"
	"github.com/dmitrymomot/userland/pkg/sessionstore/pgstore"
)

// Credentials are the connection settings for the PostgreSQL handler.
type Credentials struct {
	ConnectionString string
	Username         string
	Password         string
}

// Builder creates sessions with the appropriate storage handler.
// Setters return the builder so calls can be chained.
type Builder struct {
	name       string
	savePath   string
	locking    bool
	table      string
	db         pgstore.DB
	creds      *Credentials
	newHandler session.HandlerFactory
	serializer serializer.Serializer
	logger     *slog.Logger
	opts       []session.Option

	mu sync.Mutex
	pg *pgstore.Store
}

// New returns a builder for the default session name with file locking on.
func New() *Builder {
	return &Builder{
		name:    session.DefaultName,
		locking: true,
	}
}

// SetName sets the session and cookie name.
func (b *Builder) SetName(name string) *Builder {
	b.name = name
	return b
}

// SetSavePath sets the directory of the file handler, optionally prefixed
// with "N;" or "N;mode;".
func (b *Builder) SetSavePath(path string) *Builder {
	b.savePath = path
	return b
}

// UseSystemTmp stores files in the system temporary directory.
func (b *Builder) UseSystemTmp() *Builder {
	return b.SetSavePath(os.TempDir())
}

// SetFileLocking toggles advisory locks in the file handler.
func (b *Builder) SetFileLocking(locking bool) *Builder {
	b.locking = locking
	return b
}

// SetTable sets the table of the PostgreSQL handler.
func (b *Builder) SetTable(table string) *Builder {
	b.table = table
	b.resetPG()
	return b
}

// SetDB selects the PostgreSQL handler over an existing pool or connection.
func (b *Builder) SetDB(db pgstore.DB) *Builder {
	b.db = db
	b.resetPG()
	return b
}

// SetDBCredentials selects the PostgreSQL handler with its own pool,
// connected on first use.
func (b *Builder) SetDBCredentials(creds Credentials) *Builder {
	b.creds = &creds
	b.resetPG()
	return b
}

// SetHandler makes every Build take its handler from newHandler, ahead of
// the PostgreSQL and file handlers. Pass a Clone method or session.Shared.
func (b *Builder) SetHandler(newHandler session.HandlerFactory) *Builder {
	b.newHandler = newHandler
	return b
}

// SetSerializer sets the serializer of built sessions.
func (b *Builder) SetSerializer(ser serializer.Serializer) *Builder {
	b.serializer = ser
	return b
}

// SetLogger sets the logger of built sessions.
func (b *Builder) SetLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// SetOptions appends session options. The builder's name and save path are
// applied after them.
func (b *Builder) SetOptions(opts ...session.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Name returns the configured session name.
func (b *Builder) Name() string {
	return b.name
}

// SavePath returns the configured save path.
func (b *Builder) SavePath() string {
	return b.savePath
}

// Build creates an unstarted session bound to transport.
func (b *Builder) Build(transport session.HTTP) (*session.Session, error) {
	handler, err := b.resolveHandler()
	if err != nil {
		return nil, err
	}

	opts := make([]session.Option, 0, len(b.opts)+4)
	opts = append(opts, b.opts...)
	opts = append(opts,
		session.WithName(b.name),
		session.WithSavePath(b.savePath),
		session.WithSerializer(b.serializer),
		session.WithLogger(b.logger),
	)
	return session.New(handler, transport, opts...)
}

// Factory returns a session.Factory for the middleware.
func (b *Builder) Factory() session.Factory {
	return b.Build
}

// Shutdown closes the pool of the PostgreSQL handler, if one was created
// from credentials.
func (b *Builder) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pg != nil {
		b.pg.Shutdown()
	}
}

// resolveHandler picks the handler for one build. The PostgreSQL store is
// created once and shared; the file store remembers the session name, so a
// new one is created every time.
func (b *Builder) resolveHandler() (session.Handler, error) {
	switch {
	case b.newHandler != nil:
		if h := b.newHandler(); h != nil {
			return h, nil
		}
		return nil, session.ErrNoHandler
	case b.db != nil || b.creds != nil:
		return b.pgStore()
	default:
		return filestore.New(filestore.Config{LockFiles: b.locking}), nil
	}
}

func (b *Builder) pgStore() (*pgstore.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pg != nil {
		return b.pg, nil
	}

	cfg := pgstore.Config{
		Table: b.table,
		DB:    b.db,
	}
	if b.db == nil && b.creds != nil {
		cfg.ConnectionString = b.creds.ConnectionString
		cfg.Username = b.creds.Username
		cfg.Password = b.creds.Password
	}

	store, err := pgstore.New(cfg)
	if err != nil {
		return nil, err
	}
	b.pg = store
	return store, nil
}

func (b *Builder) resetPG() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pg = nil
}
