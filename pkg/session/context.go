package session

import (
	"context"
	"fmt"
)

type sessionContextKey struct{ name string }

// WithSession adds a session to the context under its name.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{name: s.Name()}, s)
}

// FromContext retrieves the session called name from the context.
func FromContext(ctx context.Context, name string) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{name: name}).(*Session)
	return s, ok
}

// MustFromContext retrieves the session called name or panics.
func MustFromContext(ctx context.Context, name string) *Session {
	s, ok := FromContext(ctx, name)
	if !ok {
		panic(fmt.Sprintf("session: %q not found in context", name))
	}
	return s
}
