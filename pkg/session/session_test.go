package session_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userland/pkg/session"
)

func newSession(t *testing.T, h session.Handler, tr session.HTTP, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{session.WithRand(noGC)}, opts...)
	s, err := session.New(h, tr, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		s, err := session.New(session.NewMemoryHandler(nil), newFakeHTTP(nil))
		require.NoError(t, err)
		assert.Equal(t, "ULSESS", s.Name())
		assert.Equal(t, "", s.SavePath())
		assert.Equal(t, session.DefaultConfig(), s.Config())
		assert.False(t, s.IsActive())
		assert.Empty(t, s.ID())
		assert.Nil(t, s.Data)
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, name := range []string{"", "bad-name", "with space", "a.b"} {
			_, err := session.New(session.NewMemoryHandler(nil), newFakeHTTP(nil), session.WithName(name))
			assert.ErrorIs(t, err, session.ErrInvalidName, name)
		}
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := session.New(nil, newFakeHTTP(nil))
		assert.ErrorIs(t, err, session.ErrNoHandler)

		_, err = session.New(session.NewMemoryHandler(nil), nil)
		assert.ErrorIs(t, err, session.ErrNoTransport)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := session.DefaultConfig()
		cfg.GCDivisor = 0
		_, err := session.New(session.NewMemoryHandler(nil), newFakeHTTP(nil), session.WithConfig(cfg))
		assert.ErrorIs(t, err, session.ErrInvalidConfig)
	})

	t.Run("save path", func(t *testing.T) {
		s, err := session.New(session.NewMemoryHandler(nil), newFakeHTTP(nil), session.WithSavePath("/tmp/sess"))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/sess", s.SavePath())
	})
}

func TestSession_Start(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new visitor gets generated id and cookie", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		s := newSession(t, session.NewMemoryHandler(nil), tr)

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		assert.True(t, s.IsActive())
		assert.Len(t, s.ID(), 40)
		assert.NotNil(t, s.Data)
		assert.Empty(t, s.Data)

		c := tr.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Equal(t, s.ID(), c.Value)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.Expires.IsZero())
	})

	t.Run("already active", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		id := s.ID()

		ok, err = s.Start(ctx)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, id, s.ID())
	})

	t.Run("headers sent", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		tr.sent = true
		s := newSession(t, session.NewMemoryHandler(nil), tr)

		ok, err := s.Start(ctx)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, s.IsActive())
	})

	t.Run("data assigned before start", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		s.Data = map[string]any{"early": true}

		ok, err := s.Start(ctx)
		assert.ErrorIs(t, err, session.ErrDataBeforeStart)
		assert.False(t, ok)
		assert.False(t, s.IsActive())
	})

	t.Run("open failure leaves session inactive", func(t *testing.T) {
		h := newFaultyHandler()
		h.openErr = errors.New("disk gone")
		s := newSession(t, h, newFakeHTTP(nil))

		ok, err := s.Start(ctx)
		assert.Error(t, err)
		assert.False(t, ok)
		assert.False(t, s.IsActive())
		assert.Nil(t, s.Data)
	})

	t.Run("cookie lifetime sets expiry", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		cfg := session.DefaultConfig()
		cfg.CookieLifetime = 400 * time.Second
		cfg.CookieDomain = "example.com"
		cfg.CookieSecure = true
		cfg.CookieHTTPOnly = true
		cfg.CookieSameSite = "lax"
		s := newSession(t, session.NewMemoryHandler(nil), tr,
			session.WithConfig(cfg),
			session.WithClock(func() time.Time { return time.Unix(86400, 0) }),
		)

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		c := tr.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Equal(t, time.Unix(86800, 0).Unix(), c.Expires.Unix())
		assert.Equal(t, 400, c.MaxAge)
		assert.Equal(t, "example.com", c.Domain)
		assert.True(t, c.Secure)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})
}

func TestSession_FixationDefense(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown cookie id is replaced", func(t *testing.T) {
		supplied := "attackerchosenid"
		tr := newFakeHTTP(map[string]string{"ULSESS": supplied})
		s := newSession(t, session.NewMemoryHandler(nil), tr)

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		assert.NotEqual(t, supplied, s.ID())
		c := tr.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Equal(t, s.ID(), c.Value)
	})

	t.Run("known cookie id is kept without new cookie", func(t *testing.T) {
		h := session.NewMemoryHandler(nil)
		storeData(t, h, "ULSESS", "existing", map[string]any{"foo": "bar"})

		tr := newFakeHTTP(map[string]string{"ULSESS": "existing"})
		s := newSession(t, h, tr)

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, "existing", s.ID())
		assert.Equal(t, map[string]any{"foo": "bar"}, s.Data)
		assert.Empty(t, tr.set)
	})

	t.Run("malformed cookie id is replaced", func(t *testing.T) {
		tr := newFakeHTTP(map[string]string{"ULSESS": "../etc/passwd"})
		s := newSession(t, session.NewMemoryHandler(nil), tr)

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, s.ID(), 40)
		assert.NotNil(t, tr.lastCookie("ULSESS"))
	})
}

func TestSession_Sniffing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := session.NewMemoryHandler(nil)
	store(t, h, "ULSESS", "abcde", []byte("notSerialization"))
	storeData(t, h, "ULSESS", "12345", map[string]any{"foo": "bar"})

	tests := []struct {
		name         string
		cookie       *string
		likely       bool
		keepID       bool
		expectedData map[string]any
	}{
		{name: "no cookie", cookie: nil, likely: false},
		{name: "empty cookie", cookie: ptr(""), likely: false},
		{name: "invalid id", cookie: ptr(".."), likely: false},
		{name: "valid id without data", cookie: ptr("y78fy"), likely: false, expectedData: map[string]any{}},
		{name: "undecodable data", cookie: ptr("abcde"), likely: true, expectedData: map[string]any{}},
		{name: "stored data", cookie: ptr("12345"), likely: true, keepID: true, expectedData: map[string]any{"foo": "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookies := map[string]string{}
			if tt.cookie != nil {
				cookies["ULSESS"] = *tt.cookie
			}
			s := newSession(t, h, newFakeHTTP(cookies))

			assert.Equal(t, tt.likely, s.SessionLikelyExists(ctx))

			ok, err := s.Start(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			if tt.keepID {
				assert.Equal(t, *tt.cookie, s.ID())
			} else if tt.cookie != nil {
				assert.NotEqual(t, *tt.cookie, s.ID())
			}
			if tt.expectedData != nil {
				assert.Equal(t, tt.expectedData, s.Data)
			}
		})
	}
}

func TestSession_PersistedDataExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newFaultyHandler()
	storeData(t, h, "ULSESS", "present", map[string]any{"a": 1})
	s := newSession(t, h, newFakeHTTP(nil))

	opens, closes := h.opens, h.closes
	assert.True(t, s.PersistedDataExists(ctx, "present"))
	assert.False(t, s.PersistedDataExists(ctx, "absent"))
	assert.Equal(t, opens+2, h.opens)
	assert.Equal(t, closes+2, h.closes)

	ok, err := s.Start(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	opens = h.opens
	assert.True(t, s.PersistedDataExists(ctx, "present"))
	assert.Equal(t, opens, h.opens, "active session reuses the open handler")
}

func TestSession_PersistedDataExists_InvalidID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newFaultyHandler()
	s := newSession(t, h, newFakeHTTP(nil))

	for _, id := range []string{"", "/../../secret", "..", "a/b", `a\b`, "bad id"} {
		assert.False(t, s.PersistedDataExists(ctx, id), "id %q", id)
	}
	assert.Zero(t, h.opens, "handler is not consulted for malformed ids")
}

func TestSession_RequestID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requested id is adopted without loading", func(t *testing.T) {
		h := session.NewMemoryHandler(nil)
		storeData(t, h, "ULSESS", "chosen-id_1", map[string]any{"secret": "x"})

		tr := newFakeHTTP(nil)
		s := newSession(t, h, tr)
		require.NoError(t, s.RequestID("chosen-id_1"))

		ok, err := s.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, "chosen-id_1", s.ID())
		assert.Empty(t, s.Data)
		c := tr.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Equal(t, "chosen-id_1", c.Value)
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		assert.ErrorIs(t, s.RequestID("no/slashes"), session.ErrInvalidID)
		assert.ErrorIs(t, s.RequestID(""), session.ErrInvalidID)
	})

	t.Run("while active", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		_, err := s.Start(ctx)
		require.NoError(t, err)
		assert.ErrorIs(t, s.RequestID("abc"), session.ErrActive)
	})
}

func TestSession_StrictAccessors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))

	_, err := s.Get("k", nil)
	assert.ErrorIs(t, err, session.ErrNotActive)
	assert.ErrorIs(t, s.Set("k", 1), session.ErrNotActive)
	assert.ErrorIs(t, s.SetMany(map[string]any{"k": 1}), session.ErrNotActive)
	assert.ErrorIs(t, s.Delete("k"), session.ErrNotActive)

	_, err = s.Start(ctx)
	require.NoError(t, err)

	v, err := s.Get("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	require.NoError(t, s.Set("k", 1))
	require.NoError(t, s.SetMany(map[string]any{"a": "x", "b": "y"}))
	v, err = s.Get("k", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, map[string]any{"k": 1, "a": "x", "b": "y"}, s.Data)

	require.NoError(t, s.Delete("k"))
	_, present := s.Data["k"]
	assert.False(t, present)
}

func TestSession_WriteClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip through cookie", func(t *testing.T) {
		h := session.NewMemoryHandler(nil)
		tr := newFakeHTTP(nil)
		s := newSession(t, h, tr)

		_, err := s.Start(ctx)
		require.NoError(t, err)
		data := map[string]any{
			"bytes":  []byte{0xff, 0x00, 0xfe},
			"broken": "caf\xc3",
			"empty":  "",
			"n":      7,
			"nested": map[string]any{"list": []any{1, "two", 3.5}},
		}
		require.NoError(t, s.SetMany(data))
		id := s.ID()

		assert.True(t, s.WriteClose(ctx))
		assert.False(t, s.IsActive())
		assert.Nil(t, s.Data)
		assert.Empty(t, s.ID())

		next := newSession(t, h, tr.next())
		ok, err := next.Start(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, next.ID())
		assert.Equal(t, data, next.Data)
	})

	t.Run("inactive", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		assert.False(t, s.WriteClose(ctx))
	})

	t.Run("write failure still closes", func(t *testing.T) {
		h := newFaultyHandler()
		h.writeErr = errors.New("read-only")
		s := newSession(t, h, newFakeHTTP(nil))

		_, err := s.Start(ctx)
		require.NoError(t, err)
		closes := h.closes

		assert.False(t, s.WriteClose(ctx))
		assert.False(t, s.IsActive())
		assert.Equal(t, closes+1, h.closes)
	})

	t.Run("unserializable data", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		_, err := s.Start(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Set("fn", func() {}))

		assert.False(t, s.WriteClose(ctx))
		assert.False(t, s.IsActive())
	})
}

func TestSession_RegenerateID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, deleteOld := range []bool{true, false} {
		t.Run(map[bool]string{true: "delete old", false: "keep old"}[deleteOld], func(t *testing.T) {
			h := session.NewMemoryHandler(nil)
			tr := newFakeHTTP(nil)
			s := newSession(t, h, tr)

			_, err := s.Start(ctx)
			require.NoError(t, err)
			require.NoError(t, s.Set("user", "alice"))
			oldID := s.ID()
			require.True(t, s.WriteClose(ctx))

			s = newSession(t, h, tr.next())
			_, err = s.Start(ctx)
			require.NoError(t, err)
			require.Equal(t, oldID, s.ID())

			require.True(t, s.RegenerateID(ctx, deleteOld))
			newID := s.ID()
			assert.NotEqual(t, oldID, newID)
			assert.Equal(t, "alice", s.Data["user"])
			require.True(t, s.WriteClose(ctx))

			_, err = load(t, h, "ULSESS", oldID)
			if deleteOld {
				assert.ErrorIs(t, err, session.ErrNotFound)
			} else {
				assert.NoError(t, err)
			}
			data, err := load(t, h, "ULSESS", newID)
			require.NoError(t, err)
			assert.Equal(t, "alice", data["user"])
		})
	}

	t.Run("sends new cookie", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		s := newSession(t, session.NewMemoryHandler(nil), tr)
		_, err := s.Start(ctx)
		require.NoError(t, err)

		require.True(t, s.RegenerateID(ctx, false))
		c := tr.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Equal(t, s.ID(), c.Value)
	})

	t.Run("inactive or headers sent", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		s := newSession(t, session.NewMemoryHandler(nil), tr)
		assert.False(t, s.RegenerateID(ctx, true))

		_, err := s.Start(ctx)
		require.NoError(t, err)
		tr.sent = true
		id := s.ID()
		assert.False(t, s.RegenerateID(ctx, true))
		assert.Equal(t, id, s.ID())
	})
}

func TestSession_Destroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	t.Run("removes record and cookie", func(t *testing.T) {
		h := session.NewMemoryHandler(nil)
		tr := newFakeHTTP(nil)
		s := newSession(t, h, tr, session.WithClock(func() time.Time { return now }))

		_, err := s.Start(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Set("k", "v"))
		id := s.ID()
		require.True(t, s.WriteClose(ctx))

		tr2 := tr.next()
		s = newSession(t, h, tr2, session.WithClock(func() time.Time { return now }))
		_, err = s.Start(ctx)
		require.NoError(t, err)
		require.Equal(t, id, s.ID())

		assert.True(t, s.Destroy(ctx, true))
		assert.False(t, s.IsActive())
		assert.Nil(t, s.Data)

		_, err = load(t, h, "ULSESS", id)
		assert.ErrorIs(t, err, session.ErrNotFound)

		c := tr2.lastCookie("ULSESS")
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Equal(t, now.Add(-86400*time.Second).Unix(), c.Expires.Unix())
		assert.True(t, c.Expires.Before(now))
	})

	t.Run("without cookie removal", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		s := newSession(t, session.NewMemoryHandler(nil), tr)
		_, err := s.Start(ctx)
		require.NoError(t, err)
		cookies := len(tr.set)

		assert.True(t, s.Destroy(ctx, false))
		assert.Len(t, tr.set, cookies)
	})

	t.Run("nothing stored", func(t *testing.T) {
		h := newFaultyHandler()
		s := newSession(t, h, newFakeHTTP(nil))
		_, err := s.Start(ctx)
		require.NoError(t, err)
		closes := h.closes

		assert.True(t, s.Destroy(ctx, false))
		assert.Equal(t, closes+1, h.closes)
	})

	t.Run("inactive", func(t *testing.T) {
		s := newSession(t, session.NewMemoryHandler(nil), newFakeHTTP(nil))
		assert.False(t, s.Destroy(ctx, true))
	})
}

func TestSession_GC(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("runs when roll hits", func(t *testing.T) {
		h := newFaultyHandler()
		cfg := session.DefaultConfig()
		cfg.GCMaxLifetime = 60 * time.Second
		s, err := session.New(h, newFakeHTTP(nil), session.WithConfig(cfg), session.WithRand(alwaysGC))
		require.NoError(t, err)

		_, err = s.Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, h.gcCalls)
		assert.Equal(t, 60*time.Second, h.lastGCML)
	})

	t.Run("skipped when roll misses", func(t *testing.T) {
		h := newFaultyHandler()
		s, err := session.New(h, newFakeHTTP(nil), session.WithRand(func(n int) int { return n - 1 }))
		require.NoError(t, err)

		_, err = s.Start(ctx)
		require.NoError(t, err)
		assert.Zero(t, h.gcCalls)
	})

	t.Run("probability zero never runs", func(t *testing.T) {
		h := newFaultyHandler()
		cfg := session.DefaultConfig()
		cfg.GCProbability = 0
		s, err := session.New(h, newFakeHTTP(nil), session.WithConfig(cfg), session.WithRand(alwaysGC))
		require.NoError(t, err)

		_, err = s.Start(ctx)
		require.NoError(t, err)
		assert.Zero(t, h.gcCalls)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		h := newFaultyHandler()
		h.gcErr = errors.New("gc exploded")
		s, err := session.New(h, newFakeHTTP(nil), session.WithRand(alwaysGC))
		require.NoError(t, err)

		ok, err := s.Start(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSession_CacheHeaders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Unix(96400, 0)
	lastModified := time.Unix(0, 0)

	tests := []struct {
		limiter session.CacheLimiter
		headers http.Header
	}{
		{
			limiter: session.CacheLimiterNone,
			headers: http.Header{},
		},
		{
			limiter: session.CacheLimiterPublic,
			headers: http.Header{
				"Expires":       {"Fri, 02 Jan 1970 02:49:40 GMT"},
				"Cache-Control": {"public, max-age=180"},
				"Last-Modified": {"Thu, 01 Jan 1970 00:00:00 GMT"},
			},
		},
		{
			limiter: session.CacheLimiterPrivateNoExpire,
			headers: http.Header{
				"Cache-Control": {"private, max-age=180, pre-check=180"},
				"Last-Modified": {"Thu, 01 Jan 1970 00:00:00 GMT"},
			},
		},
		{
			limiter: session.CacheLimiterPrivate,
			headers: http.Header{
				"Expires":       {"Thu, 19 Nov 1981 08:52:00 GMT"},
				"Cache-Control": {"private, max-age=180, pre-check=180"},
				"Last-Modified": {"Thu, 01 Jan 1970 00:00:00 GMT"},
			},
		},
		{
			limiter: session.CacheLimiterNoCache,
			headers: http.Header{
				"Expires":       {"Thu, 19 Nov 1981 08:52:00 GMT"},
				"Cache-Control": {"no-store, no-cache, must-revalidate, post-check=0, pre-check=0"},
				"Pragma":        {"no-cache"},
			},
		},
	}

	for _, tt := range tests {
		t.Run("limiter "+string(tt.limiter), func(t *testing.T) {
			tr := newFakeHTTP(nil)
			s := newSession(t, session.NewMemoryHandler(nil), tr,
				session.WithCacheLimiter(tt.limiter, 180*time.Second),
				session.WithClock(func() time.Time { return now }),
				session.WithLastModified(lastModified),
			)

			ok, err := s.Start(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.headers, tr.headers)
		})
	}

	t.Run("cache expire in whole seconds", func(t *testing.T) {
		tr := newFakeHTTP(nil)
		s := newSession(t, session.NewMemoryHandler(nil), tr,
			session.WithCacheLimiter(session.CacheLimiterPrivateNoExpire, 90*time.Minute+500*time.Millisecond),
			session.WithLastModified(lastModified),
		)
		_, err := s.Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, "private, max-age=5400, pre-check=5400", tr.headers.Get("Cache-Control"))
	})
}

func TestSession_Simultaneous(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	shared := session.NewMemoryHandler(nil)
	handlers := map[string]session.Handler{
		"first":  session.NewMemoryHandler(nil),
		"second": shared,
		"third":  shared,
	}

	tr := newFakeHTTP(nil)
	ids := map[string]string{}
	for name, h := range handlers {
		s := newSession(t, h, tr, session.WithName(name))
		_, err := s.Start(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Set("owner", name))
		ids[name] = s.ID()
		require.True(t, s.WriteClose(ctx))
	}
	assert.NotEqual(t, ids["first"], ids["second"])
	assert.NotEqual(t, ids["second"], ids["third"])

	next := tr.next()
	for name, h := range handlers {
		s := newSession(t, h, next, session.WithName(name))
		_, err := s.Start(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids[name], s.ID())
		v, err := s.Get("owner", nil)
		require.NoError(t, err)
		assert.Equal(t, name, v)
		assert.Len(t, s.Data, 1)
		s.WriteClose(ctx)
	}

	// a cookie from one session does not unlock another session's namespace
	cross := newFakeHTTP(map[string]string{"third": ids["second"]})
	s := newSession(t, shared, cross, session.WithName("third"))
	_, err := s.Start(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, ids["second"], s.ID())
	assert.Empty(t, s.Data)
}

type prefixValidator struct {
	*session.MemoryHandler
}

func (prefixValidator) IDIsValid(id string) bool {
	return strings.HasPrefix(id, "ok")
}

func TestSession_HandlerIDValidator(t *testing.T) {
	t.Parallel()

	h := prefixValidator{session.NewMemoryHandler(nil)}
	s := newSession(t, h, newFakeHTTP(map[string]string{"ULSESS": "okay"}))

	id, ok := s.IDFromCookie()
	assert.True(t, ok)
	assert.Equal(t, "okay", id)

	assert.ErrorIs(t, s.RequestID("nope"), session.ErrInvalidID)
	assert.NoError(t, s.RequestID("ok.with.dots"))
}

func TestSession_RemoveCookie(t *testing.T) {
	t.Parallel()

	tr := newFakeHTTP(nil)
	s := newSession(t, session.NewMemoryHandler(nil), tr)
	assert.True(t, s.RemoveCookie())

	tr.sent = true
	assert.False(t, s.RemoveCookie())
}

func ptr(s string) *string { return &s }

type ctxKey struct{}

// ctxRecorder is a slog.Handler keeping the context value of every record.
type ctxRecorder struct {
	values []any
	msgs   []string
}

func (r *ctxRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *ctxRecorder) Handle(ctx context.Context, rec slog.Record) error {
	r.values = append(r.values, ctx.Value(ctxKey{}))
	r.msgs = append(r.msgs, rec.Message)
	return nil
}

func (r *ctxRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *ctxRecorder) WithGroup(string) slog.Handler      { return r }

func TestSession_CookieWarningsCarryContext(t *testing.T) {
	t.Parallel()

	rec := &ctxRecorder{}
	tr := newFakeHTTP(nil)
	s := newSession(t, session.NewMemoryHandler(nil), tr, session.WithLogger(slog.New(rec)))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	_, err := s.Start(ctx)
	require.NoError(t, err)

	tr.sent = true
	assert.True(t, s.Destroy(ctx, true))

	require.Contains(t, rec.msgs, "failed to remove session cookie")
	for i, msg := range rec.msgs {
		if msg == "failed to remove session cookie" {
			assert.Equal(t, "req-1", rec.values[i])
		}
	}
}
