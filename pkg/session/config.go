package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/userland/pkg/sessionid"
)

// CacheLimiter selects the caching headers sent by Start.
type CacheLimiter string

const (
	CacheLimiterNone            CacheLimiter = ""
	CacheLimiterPublic          CacheLimiter = "public"
	CacheLimiterPrivateNoExpire CacheLimiter = "private_no_expire"
	CacheLimiterPrivate         CacheLimiter = "private"
	CacheLimiterNoCache         CacheLimiter = "nocache"
)

// DefaultName is the session (and cookie) name used when none is configured.
const DefaultName = "ULSESS"

// Config holds session configuration.
type Config struct {
	// Name is both the cookie name and the storage namespace.
	Name string `env:"SESSION_NAME" envDefault:"ULSESS"`

	// SavePath is passed to Handler.Open. Its meaning is up to the handler.
	SavePath string `env:"SESSION_SAVE_PATH"`

	// CookieLifetime of zero produces a browser-session cookie.
	CookieLifetime time.Duration `env:"SESSION_COOKIE_LIFETIME" envDefault:"0s"`
	CookiePath     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain   string        `env:"SESSION_COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"false"`
	// CookieSameSite is one of "", "lax", "strict" or "none".
	CookieSameSite string `env:"SESSION_COOKIE_SAME_SITE"`

	// GCMaxLifetime is the age after which a stored record is abandoned.
	GCMaxLifetime time.Duration `env:"SESSION_GC_MAX_LIFETIME" envDefault:"1400s"`
	// GC runs on Start with probability GCProbability/GCDivisor.
	GCProbability int `env:"SESSION_GC_PROBABILITY" envDefault:"1"`
	GCDivisor     int `env:"SESSION_GC_DIVISOR" envDefault:"100"`

	CacheLimiter CacheLimiter  `env:"SESSION_CACHE_LIMITER" envDefault:"nocache"`
	CacheExpire  time.Duration `env:"SESSION_CACHE_EXPIRE" envDefault:"180s"`

	IDLength int `env:"SESSION_ID_LENGTH" envDefault:"40"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Name:          DefaultName,
		CookiePath:    "/",
		GCMaxLifetime: 1400 * time.Second,
		GCProbability: 1,
		GCDivisor:     100,
		CacheLimiter:  CacheLimiterNoCache,
		CacheExpire:   180 * time.Second,
		IDLength:      sessionid.DefaultLength,
	}
}

// Validate reports configuration values a session cannot work with.
func (c Config) Validate() error {
	if !sessionid.IsValidName(c.Name) {
		return ErrInvalidName
	}

	var errs []error
	if c.IDLength < 1 {
		errs = append(errs, fmt.Errorf("id length must be positive, got %d", c.IDLength))
	}
	if c.GCDivisor < 1 {
		errs = append(errs, fmt.Errorf("gc divisor must be positive, got %d", c.GCDivisor))
	}
	if c.GCProbability < 0 {
		errs = append(errs, fmt.Errorf("gc probability must not be negative, got %d", c.GCProbability))
	}
	if c.GCMaxLifetime < 0 || c.CookieLifetime < 0 || c.CacheExpire < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	switch c.CacheLimiter {
	case CacheLimiterNone, CacheLimiterPublic, CacheLimiterPrivateNoExpire, CacheLimiterPrivate, CacheLimiterNoCache:
	default:
		errs = append(errs, fmt.Errorf("unknown cache limiter %q", c.CacheLimiter))
	}
	if _, ok := parseSameSite(c.CookieSameSite); !ok {
		errs = append(errs, fmt.Errorf("unknown same-site mode %q", c.CookieSameSite))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

func parseSameSite(s string) (http.SameSite, bool) {
	switch s {
	case "":
		return 0, true
	case "lax", "Lax":
		return http.SameSiteLaxMode, true
	case "strict", "Strict":
		return http.SameSiteStrictMode, true
	case "none", "None":
		return http.SameSiteNoneMode, true
	}
	return 0, false
}

// seconds truncates d to whole seconds.
func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
