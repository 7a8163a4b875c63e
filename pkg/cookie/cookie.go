package cookie

import (
	"errors"
	"net/http"
	"time"
)

// expiredOffset is how far in the past a removal cookie expires.
const expiredOffset = 24 * time.Hour

// Defaults are applied to every cookie before caller options.
func Defaults() Options {
	return Options{Path: "/"}
}

// New builds a cookie carrying value.
func New(name, value string, opts ...Option) *http.Cookie {
	o := applyOptions(Defaults(), opts)
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		Expires:  o.Expires,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}

// Expired builds a cookie that makes the client drop name.
// The expiry is one day before now so that clock skew cannot keep it alive.
func Expired(name string, now time.Time, opts ...Option) *http.Cookie {
	c := New(name, "", opts...)
	c.Expires = now.Add(-expiredOffset)
	c.MaxAge = 0
	return c
}

// Get returns the value of the named request cookie.
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", errors.Join(ErrInvalidCookie, err)
	}
	return c.Value, nil
}

// Set writes c to the response headers.
// Cookies with invalid names are rejected instead of being silently dropped.
func Set(w http.ResponseWriter, c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return ErrInvalidCookie
	}
	if err := c.Valid(); err != nil {
		return errors.Join(ErrInvalidCookie, err)
	}
	http.SetCookie(w, c)
	return nil
}
