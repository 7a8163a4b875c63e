package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/userland/pkg/serializer"
)

// Option configures a Session.
type Option func(*Session)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithName sets the session name.
func WithName(name string) Option {
	return func(s *Session) {
		s.cfg.Name = name
	}
}

// WithSavePath sets the path passed to Handler.Open.
func WithSavePath(path string) Option {
	return func(s *Session) {
		s.cfg.SavePath = path
	}
}

// WithCacheLimiter sets the caching headers policy.
func WithCacheLimiter(limiter CacheLimiter, expire time.Duration) Option {
	return func(s *Session) {
		s.cfg.CacheLimiter = limiter
		s.cfg.CacheExpire = expire
	}
}

// WithSerializer sets the data codec. Defaults to serializer.Default().
func WithSerializer(ser serializer.Serializer) Option {
	return func(s *Session) {
		if ser != nil {
			s.serializer = ser
		}
	}
}

// WithLogger sets the logger for backend failures. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand overrides the GC roll source. fn must return a value in [0, n).
func WithRand(fn func(n int) int) Option {
	return func(s *Session) {
		if fn != nil {
			s.intn = fn
		}
	}
}

// WithLastModified sets the Last-Modified value used by the public and
// private cache limiters. Defaults to the executable's modification time.
func WithLastModified(t time.Time) Option {
	return func(s *Session) {
		s.modTime = t
	}
}
