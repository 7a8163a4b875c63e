package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userland/pkg/serializer"
	"github.com/dmitrymomot/userland/pkg/session"
)

// fakeHTTP records cookies and headers instead of talking to a client.
type fakeHTTP struct {
	cookies map[string]string
	set     []*http.Cookie
	headers http.Header
	sent    bool
}

func newFakeHTTP(cookies map[string]string) *fakeHTTP {
	if cookies == nil {
		cookies = map[string]string{}
	}
	return &fakeHTTP{cookies: cookies, headers: http.Header{}}
}

func (f *fakeHTTP) Cookie(name string) (string, bool) {
	v, ok := f.cookies[name]
	return v, ok
}

func (f *fakeHTTP) SetCookie(c *http.Cookie) error {
	if f.sent {
		return session.ErrHeadersSent
	}
	f.set = append(f.set, c)
	return nil
}

func (f *fakeHTTP) SetHeader(key, value string) {
	f.headers.Set(key, value)
}

func (f *fakeHTTP) HeadersSent() bool {
	return f.sent
}

func (f *fakeHTTP) lastCookie(name string) *http.Cookie {
	for i := len(f.set) - 1; i >= 0; i-- {
		if f.set[i].Name == name {
			return f.set[i]
		}
	}
	return nil
}

// next simulates the following request: cookies set on this response are
// sent back by the client.
func (f *fakeHTTP) next() *fakeHTTP {
	cookies := make(map[string]string, len(f.cookies))
	for k, v := range f.cookies {
		cookies[k] = v
	}
	for _, c := range f.set {
		if c.Value == "" {
			delete(cookies, c.Name)
			continue
		}
		cookies[c.Name] = c.Value
	}
	return newFakeHTTP(cookies)
}

// faultyHandler wraps MemoryHandler with injectable failures and call counts.
type faultyHandler struct {
	*session.MemoryHandler

	openErr    error
	writeErr   error
	gcErr      error
	destroyErr error

	opens    int
	closes   int
	gcCalls  int
	lastGCML time.Duration
}

func newFaultyHandler() *faultyHandler {
	return &faultyHandler{MemoryHandler: session.NewMemoryHandler(nil)}
}

func (h *faultyHandler) Open(ctx context.Context, savePath, name string) error {
	h.opens++
	if h.openErr != nil {
		return h.openErr
	}
	return h.MemoryHandler.Open(ctx, savePath, name)
}

func (h *faultyHandler) Close(ctx context.Context) error {
	h.closes++
	return h.MemoryHandler.Close(ctx)
}

func (h *faultyHandler) Write(ctx context.Context, id string, data []byte) error {
	if h.writeErr != nil {
		return h.writeErr
	}
	return h.MemoryHandler.Write(ctx, id, data)
}

func (h *faultyHandler) Destroy(ctx context.Context, id string) error {
	if h.destroyErr != nil {
		return h.destroyErr
	}
	return h.MemoryHandler.Destroy(ctx, id)
}

func (h *faultyHandler) GC(ctx context.Context, maxLifetime time.Duration) error {
	h.gcCalls++
	h.lastGCML = maxLifetime
	if h.gcErr != nil {
		return h.gcErr
	}
	return h.MemoryHandler.GC(ctx, maxLifetime)
}

// store writes raw bytes for name/id directly through the handler.
func store(t *testing.T, h session.Handler, name, id string, raw []byte) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.Open(ctx, "", name))
	require.NoError(t, h.Write(ctx, id, raw))
	require.NoError(t, h.Close(ctx))
}

// storeData serializes data with the default serializer and stores it.
func storeData(t *testing.T, h session.Handler, name, id string, data map[string]any) {
	t.Helper()
	raw, err := serializer.Default().Serialize(data)
	require.NoError(t, err)
	store(t, h, name, id, raw)
}

// load reads and deserializes stored data, returning session.ErrNotFound on a miss.
func load(t *testing.T, h session.Handler, name, id string) (map[string]any, error) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.Open(ctx, "", name))
	defer h.Close(ctx)

	raw, err := h.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return serializer.Default().Deserialize(raw)
}

func noGC(int) int { return 1 << 30 }

func alwaysGC(int) int { return 0 }
