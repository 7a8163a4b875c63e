package session

import (
	"net/http"
)

// Factory builds an unstarted session bound to transport.
type Factory func(transport HTTP) (*Session, error)

// HandlerFactory returns the handler for one session. Handlers that keep the
// open name (MemoryHandler and most stores) must not be shared by sessions
// that can overlap, so a factory usually returns a fresh handler or a Clone.
type HandlerFactory func() Handler

// Shared returns a HandlerFactory handing out h itself. Use it only for
// handlers without per-open state, such as the PostgreSQL store.
func Shared(h Handler) HandlerFactory {
	return func() Handler { return h }
}

// NewFactory returns a Factory creating sessions with opts over a handler
// obtained from newHandler for every session.
func NewFactory(newHandler HandlerFactory, opts ...Option) Factory {
	return func(transport HTTP) (*Session, error) {
		if newHandler == nil {
			return nil, ErrNoHandler
		}
		return New(newHandler(), transport, opts...)
	}
}

// Middleware builds one session per factory for every request and puts them
// in the request context. Sessions are not started; handlers call Start when
// they need one. Sessions still active after the handler returns are written
// and closed.
func Middleware(factories ...Factory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rh := NewResponseHTTP(w, r)
			ctx := r.Context()

			sessions := make([]*Session, 0, len(factories))
			for _, f := range factories {
				s, err := f(rh)
				if err != nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				sessions = append(sessions, s)
				ctx = WithSession(ctx, s)
			}

			r = r.WithContext(ctx)
			rh.r = r

			defer func() {
				for _, s := range sessions {
					if s.IsActive() {
						s.WriteClose(ctx)
					}
				}
			}()

			next.ServeHTTP(rh, r)
		})
	}
}
