package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/userland/pkg/session"
)

const (
	defaultDirMode  os.FileMode = 0o777
	defaultFileMode os.FileMode = 0o600
)

// Store is a session.Handler backed by files in one directory.
// A Store keeps the directory and name of the last Open, so sessions that
// may overlap should each get their own Store, typically through Clone.
type Store struct {
	now func() time.Time

	mu      sync.RWMutex
	locking bool
	dir     string
	name    string
}

var _ session.Handler = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used by GC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a file store.
func New(cfg Config, opts ...Option) *Store {
	s := &Store{
		locking: cfg.LockFiles,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clone returns an unopened Store with the same settings.
// Its signature fits session.HandlerFactory.
func (s *Store) Clone() session.Handler {
	return New(Config{LockFiles: s.Locking()}, WithClock(s.now))
}

// Locking reports whether advisory locks are used.
func (s *Store) Locking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locking
}

// SetLocking toggles advisory locks.
func (s *Store) SetLocking(enabled bool) {
	s.mu.Lock()
	s.locking = enabled
	s.mu.Unlock()
}

// Dir returns the directory resolved by the last Open.
func (s *Store) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Open resolves savePath, creating the directory when it is missing.
func (s *Store) Open(_ context.Context, savePath, name string) error {
	dir, mode, err := parseSavePath(savePath)
	if err != nil {
		return err
	}

	if info, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrInvalidSavePath, err)
		}
		if err := os.MkdirAll(dir, mode); err != nil {
			return errors.Join(ErrNotWritable, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrInvalidSavePath, dir)
	}

	if !writable(dir) {
		return fmt.Errorf("%w: %q", ErrNotWritable, dir)
	}

	s.mu.Lock()
	s.dir = dir
	s.name = name
	s.mu.Unlock()
	return nil
}

// Close is a no-op; files are closed after every operation.
func (s *Store) Close(context.Context) error {
	return nil
}

// Read returns the content of the session file for id.
func (s *Store) Read(_ context.Context, id string) ([]byte, error) {
	path, locking, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	if locking {
		if err := lockShared(f); err != nil {
			return nil, err
		}
		defer unlock(f)
	}

	return io.ReadAll(f)
}

// Write replaces the file content. An existing file that is not writable
// is left alone and ErrNotWritable is returned.
func (s *Store) Write(_ context.Context, id string, data []byte) error {
	path, locking, err := s.resolve(id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !writable(path) {
		return fmt.Errorf("%w: %q", ErrNotWritable, path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, defaultFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return errors.Join(ErrNotWritable, err)
		}
		return err
	}
	defer f.Close()

	if locking {
		if err := lockExclusive(f); err != nil {
			return err
		}
		defer unlock(f)
	}

	// truncate only once the lock is held
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	return nil
}

// Destroy removes the session file for id.
func (s *Store) Destroy(_ context.Context, id string) error {
	path, _, err := s.resolve(id)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.ErrNotFound
		}
		return err
	}
	if !info.Mode().IsRegular() || !writable(path) {
		return fmt.Errorf("%w: %q", ErrNotWritable, path)
	}
	return os.Remove(path)
}

// GC removes this name's files older than maxLifetime, compared in whole seconds.
func (s *Store) GC(_ context.Context, maxLifetime time.Duration) error {
	s.mu.RLock()
	dir, name := s.dir, s.name
	s.mu.RUnlock()
	if dir == "" {
		return session.ErrHandlerNotOpen
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	limit := int64(maxLifetime / time.Second)
	prefix := name + "_"

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		if now-info.ModTime().Unix() <= limit {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !writable(path) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resolve returns the file path for id and the locking mode under one lock.
func (s *Store) resolve(id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dir == "" {
		return "", false, session.ErrHandlerNotOpen
	}
	if !validID(id) {
		return "", false, fmt.Errorf("%w: %q", session.ErrInvalidID, id)
	}
	return filepath.Join(s.dir, s.name+"_"+id), s.locking, nil
}

// validID rejects ids that could leave the directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}

// parseSavePath splits "dir", "N;dir" or "N;mode;dir".
func parseSavePath(savePath string) (string, os.FileMode, error) {
	if savePath == "" {
		return "", 0, fmt.Errorf("%w: empty path", ErrInvalidSavePath)
	}

	parts := strings.Split(savePath, ";")
	mode := defaultDirMode

	switch len(parts) {
	case 1, 2:
	case 3:
		m, err := strconv.ParseUint(parts[1], 8, 32)
		if err != nil {
			return "", 0, fmt.Errorf("%w: bad mode %q", ErrInvalidSavePath, parts[1])
		}
		mode = os.FileMode(m) & os.ModePerm
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSavePath, savePath)
	}

	dir := strings.TrimRight(parts[len(parts)-1], `/\`)
	if dir == "" {
		if strings.HasPrefix(parts[len(parts)-1], "/") {
			return "/", mode, nil
		}
		return "", 0, fmt.Errorf("%w: empty path", ErrInvalidSavePath)
	}
	return dir, mode, nil
}
