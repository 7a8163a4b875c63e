package sessionbuilder

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/userland/pkg/session"
	"github.com/dmitrymomot/userland/pkg/sessionid"
)

// Registry tracks session names in use. It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Reserve claims name. It fails when the name is malformed or taken.
func (r *Registry) Reserve(name string) error {
	if !sessionid.IsValidName(name) {
		return fmt.Errorf("%w: %q", session.ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrNameInUse, name)
	}
	r.names[name] = struct{}{}
	return nil
}

// Release frees name. Releasing an unknown name is a no-op.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, name)
}

// Reset frees every name.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.names)
}

// Names returns the reserved names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Factory reserves the builder's name and returns its factory.
func (r *Registry) Factory(b *Builder) (session.Factory, error) {
	if err := r.Reserve(b.Name()); err != nil {
		return nil, err
	}
	return b.Factory(), nil
}
