package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memoryRecord struct {
	data      []byte
	writtenAt time.Time
}

// memoryStorage is the record map shared by a MemoryHandler and its clones.
type memoryStorage struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

// MemoryHandler keeps records in process memory, namespaced by the name
// passed to Open.
//
// Opens are counted, so sessions with the same name may overlap on one
// handler. A handler serves one name at a time; Open with another name
// while it is open fails with ErrHandlerBusy. Use Clone to give every
// request its own handler over the same records.
type MemoryHandler struct {
	storage *memoryStorage

	mu    sync.Mutex
	name  string
	opens int
}

var _ Handler = (*MemoryHandler)(nil)

// NewMemoryHandler creates an empty in-memory handler. A nil now uses time.Now.
func NewMemoryHandler(now func() time.Time) *MemoryHandler {
	if now == nil {
		now = time.Now
	}
	return &MemoryHandler{
		storage: &memoryStorage{
			records: make(map[string]memoryRecord),
			now:     now,
		},
	}
}

// Clone returns a closed handler sharing this handler's records.
// Its signature fits HandlerFactory.
func (m *MemoryHandler) Clone() Handler {
	return &MemoryHandler{storage: m.storage}
}

// Open binds the handler to name.
func (m *MemoryHandler) Open(_ context.Context, _, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opens > 0 && m.name != name {
		return fmt.Errorf("%w: open for %q, requested %q", ErrHandlerBusy, m.name, name)
	}
	m.name = name
	m.opens++
	return nil
}

// Close releases one Open.
func (m *MemoryHandler) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opens > 0 {
		m.opens--
	}
	return nil
}

// Read returns a copy of the data stored under id.
func (m *MemoryHandler) Read(_ context.Context, id string) ([]byte, error) {
	key, err := m.key(id)
	if err != nil {
		return nil, err
	}

	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()

	rec, ok := m.storage.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), rec.data...), nil
}

// Write stores a copy of data under id.
func (m *MemoryHandler) Write(_ context.Context, id string, data []byte) error {
	key, err := m.key(id)
	if err != nil {
		return err
	}

	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()

	m.storage.records[key] = memoryRecord{
		data:      append([]byte(nil), data...),
		writtenAt: m.storage.now(),
	}
	return nil
}

// Destroy removes the record stored under id.
func (m *MemoryHandler) Destroy(_ context.Context, id string) error {
	key, err := m.key(id)
	if err != nil {
		return err
	}

	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()

	if _, ok := m.storage.records[key]; !ok {
		return ErrNotFound
	}
	delete(m.storage.records, key)
	return nil
}

// GC removes records of the open name older than maxLifetime.
func (m *MemoryHandler) GC(_ context.Context, maxLifetime time.Duration) error {
	prefix, err := m.key("")
	if err != nil {
		return err
	}

	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()

	now := m.storage.now()
	for key, rec := range m.storage.records {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if seconds(now.Sub(rec.writtenAt)) > seconds(maxLifetime) {
			delete(m.storage.records, key)
		}
	}
	return nil
}

// Touch sets the write time of a stored record.
func (m *MemoryHandler) Touch(name, id string, at time.Time) bool {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()

	key := name + "_" + id
	rec, ok := m.storage.records[key]
	if !ok {
		return false
	}
	rec.writtenAt = at
	m.storage.records[key] = rec
	return true
}

// Len returns the number of stored records across all names.
func (m *MemoryHandler) Len() int {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	return len(m.storage.records)
}

// key namespaces id with the open name.
func (m *MemoryHandler) key(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opens == 0 {
		return "", ErrHandlerNotOpen
	}
	return m.name + "_" + id, nil
}
