package session

import (
	"context"
	"time"
)

// Handler persists serialized session data.
//
// A Session calls Open before any other method and Close when it is done.
// Read and Destroy return ErrNotFound when nothing is stored under id.
// GC removes records whose age is strictly greater than maxLifetime and
// is limited to the namespace passed to Open.
type Handler interface {
	// Open prepares the handler for the session called name.
	Open(ctx context.Context, savePath, name string) error
	// Close releases what Open acquired.
	Close(ctx context.Context) error
	// Read returns the data stored under id.
	Read(ctx context.Context, id string) ([]byte, error)
	// Write stores data under id, replacing any previous record.
	Write(ctx context.Context, id string, data []byte) error
	// Destroy removes the record stored under id.
	Destroy(ctx context.Context, id string) error
	// GC removes records older than maxLifetime.
	GC(ctx context.Context, maxLifetime time.Duration) error
}

// IDValidator is implemented by handlers with their own id rules.
// Without it ids must match [A-Za-z0-9_-]+.
type IDValidator interface {
	// IDIsValid reports whether id may be passed to the handler.
	IDIsValid(id string) bool
}
