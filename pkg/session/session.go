package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmitrymomot/userland/pkg/cookie"
	"github.com/dmitrymomot/userland/pkg/logger"
	"github.com/dmitrymomot/userland/pkg/serializer"
	"github.com/dmitrymomot/userland/pkg/sessionid"
)

// removeCookieOffset is how far in the past a removed cookie expires.
const removeCookieOffset = 86400 * time.Second

// Session is one named session within a request.
//
// A Session is inactive until Start succeeds and becomes inactive again after
// WriteClose or Destroy. It must not be shared between goroutines.
type Session struct {
	// Data holds the session values. It is nil while inactive.
	Data map[string]any

	id          string
	requestedID string

	cfg        Config
	handler    Handler
	transport  HTTP
	serializer serializer.Serializer
	logger     *slog.Logger
	now        func() time.Time
	intn       func(n int) int
	modTime    time.Time
}

// New creates an inactive session.
func New(handler Handler, transport HTTP, opts ...Option) (*Session, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	if transport == nil {
		return nil, ErrNoTransport
	}

	s := &Session{
		cfg:        DefaultConfig(),
		handler:    handler,
		transport:  transport,
		serializer: serializer.Default(),
		logger:     logger.Discard(),
		now:        time.Now,
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	s.logger = s.logger.With(logger.Component("session"), logger.SessionName(s.cfg.Name))
	return s, nil
}

// Start activates the session.
//
// It returns false without error when headers were already sent or the
// session is already active. A cookie id is only kept when the handler holds
// data for it; otherwise a fresh id is issued, so clients cannot choose ids.
func (s *Session) Start(ctx context.Context) (bool, error) {
	if s.transport.HeadersSent() || s.id != "" {
		return false, nil
	}
	if s.Data != nil {
		return false, ErrDataBeforeStart
	}

	requested := s.requestedID != ""
	var id string
	if requested {
		id = s.requestedID
	} else if cid, ok := s.IDFromCookie(); ok {
		id = cid
	} else {
		gen, err := sessionid.Generate(s.cfg.IDLength)
		if err != nil {
			return false, err
		}
		id = gen
	}

	if err := s.handler.Open(ctx, s.cfg.SavePath, s.cfg.Name); err != nil {
		s.logger.ErrorContext(ctx, "failed to open session handler",
			logger.Operation("open"), logger.Error(err))
		return false, err
	}

	s.id = id
	s.Data = map[string]any{}
	if requested {
		s.sendCookie(ctx)
	}

	if s.intn(s.cfg.GCDivisor)+1 <= s.cfg.GCProbability {
		if err := s.handler.GC(ctx, s.cfg.GCMaxLifetime); err != nil {
			s.logger.WarnContext(ctx, "session gc failed",
				logger.Operation("gc"), logger.Error(err))
		}
	}

	if !requested && !s.loadData(ctx) {
		gen, err := sessionid.Generate(s.cfg.IDLength)
		if err != nil {
			_ = s.handler.Close(ctx)
			s.reset()
			return false, err
		}
		s.id = gen
		s.sendCookie(ctx)
	}
	s.requestedID = ""

	s.sendCacheHeaders()
	return true, nil
}

// WriteClose persists Data and deactivates the session. The handler is
// closed even when the write fails; the result reports whether data was saved.
func (s *Session) WriteClose(ctx context.Context) bool {
	if s.id == "" {
		return false
	}

	saved := s.saveData(ctx)
	if err := s.handler.Close(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to close session handler",
			logger.Operation("close"), logger.Error(err))
	}
	s.reset()
	return saved
}

// Destroy removes the stored record and deactivates the session.
// With removeCookie it also tells the client to drop the cookie.
func (s *Session) Destroy(ctx context.Context, removeCookie bool) bool {
	if s.id == "" {
		return false
	}

	if removeCookie {
		s.removeCookie(ctx)
	}
	if err := s.handler.Destroy(ctx, s.id); err != nil {
		s.logDestroyError(ctx, err)
	}
	if err := s.handler.Close(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to close session handler",
			logger.Operation("close"), logger.Error(err))
	}
	s.reset()
	return true
}

// RegenerateID issues a new id for the active session and sends it to the
// client. Data stays in memory and is written under the new id on WriteClose.
func (s *Session) RegenerateID(ctx context.Context, deleteOld bool) bool {
	if s.transport.HeadersSent() || s.id == "" {
		return false
	}

	newID, err := sessionid.Generate(s.cfg.IDLength)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate session id", logger.Error(err))
		return false
	}

	oldID := s.id
	s.id = newID
	s.sendCookie(ctx)

	if deleteOld {
		if err := s.handler.Destroy(ctx, oldID); err != nil {
			s.logDestroyError(ctx, err)
		}
	}
	return true
}

// ID returns the active id, or "" when inactive.
func (s *Session) ID() string {
	return s.id
}

// RequestID asks Start to use id instead of resolving one. The id is sent
// to the client and no stored data is loaded for it.
func (s *Session) RequestID(id string) error {
	if !s.validID(id) {
		return ErrInvalidID
	}
	if s.id != "" {
		return ErrActive
	}
	s.requestedID = id
	return nil
}

// IDFromCookie returns the client's id if it is well formed.
// It does not check that data exists for it.
func (s *Session) IDFromCookie() (string, bool) {
	id, ok := s.transport.Cookie(s.cfg.Name)
	if !ok || id == "" || !s.validID(id) {
		return "", false
	}
	return id, true
}

// PersistedDataExists reports whether the handler has non-empty data for id.
// Malformed ids are rejected without touching the handler.
// An inactive session opens and closes the handler around the read.
func (s *Session) PersistedDataExists(ctx context.Context, id string) bool {
	if !s.validID(id) {
		return false
	}
	if s.id == "" {
		if err := s.handler.Open(ctx, s.cfg.SavePath, s.cfg.Name); err != nil {
			s.logger.WarnContext(ctx, "failed to open session handler",
				logger.Operation("open"), logger.Error(err))
			return false
		}
		defer func() {
			_ = s.handler.Close(ctx)
		}()
	}

	data, err := s.handler.Read(ctx, id)
	return err == nil && len(data) > 0
}

// SessionLikelyExists reports whether the client sent a valid id with stored
// data. Use it to avoid starting sessions for every visitor.
func (s *Session) SessionLikelyExists(ctx context.Context) bool {
	id, ok := s.IDFromCookie()
	return ok && s.PersistedDataExists(ctx, id)
}

// RemoveCookie sends an already expired cookie for the session name.
func (s *Session) RemoveCookie() bool {
	return s.removeCookie(context.Background())
}

func (s *Session) removeCookie(ctx context.Context) bool {
	c := cookie.Expired(s.cfg.Name, s.now(), s.cookieOptions()...)
	c.Expires = s.now().Add(-removeCookieOffset)
	if err := s.transport.SetCookie(c); err != nil {
		s.logger.WarnContext(ctx, "failed to remove session cookie", logger.Error(err))
		return false
	}
	return true
}

// Get returns the value stored under key, or def when absent.
func (s *Session) Get(key string, def any) (any, error) {
	if s.id == "" {
		return nil, ErrNotActive
	}
	if v, ok := s.Data[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set stores value under key.
func (s *Session) Set(key string, value any) error {
	if s.id == "" {
		return ErrNotActive
	}
	s.Data[key] = value
	return nil
}

// SetMany stores every entry of values.
func (s *Session) SetMany(values map[string]any) error {
	if s.id == "" {
		return ErrNotActive
	}
	for k, v := range values {
		s.Data[k] = v
	}
	return nil
}

// Delete removes key.
func (s *Session) Delete(key string) error {
	if s.id == "" {
		return ErrNotActive
	}
	delete(s.Data, key)
	return nil
}

// Name returns the session name, which is also the cookie name.
func (s *Session) Name() string { return s.cfg.Name }

// SavePath returns the path passed to Handler.Open.
func (s *Session) SavePath() string { return s.cfg.SavePath }

// Handler returns the storage handler.
func (s *Session) Handler() Handler { return s.handler }

// Config returns a copy of the configuration.
func (s *Session) Config() Config { return s.cfg }

// IsActive reports whether the session is started.
func (s *Session) IsActive() bool { return s.id != "" }

func (s *Session) loadData(ctx context.Context) bool {
	raw, err := s.handler.Read(ctx, s.id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read session data",
				logger.Operation("read"), logger.Error(err))
		}
		return false
	}
	if len(raw) == 0 {
		return false
	}
	data, err := s.serializer.Deserialize(raw)
	if err != nil || data == nil {
		s.logger.DebugContext(ctx, "discarding undecodable session data", logger.Error(err))
		return false
	}
	s.Data = data
	return true
}

func (s *Session) saveData(ctx context.Context) bool {
	raw, err := s.serializer.Serialize(s.Data)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to serialize session data",
			logger.Operation("serialize"), logger.Error(err))
		return false
	}
	if err := s.handler.Write(ctx, s.id, raw); err != nil {
		s.logger.ErrorContext(ctx, "failed to write session data",
			logger.Operation("write"), logger.Error(err))
		return false
	}
	return true
}

func (s *Session) sendCookie(ctx context.Context) {
	opts := s.cookieOptions()
	if s.cfg.CookieLifetime > 0 {
		opts = append(opts,
			cookie.WithExpires(s.now().Add(s.cfg.CookieLifetime)),
			cookie.WithMaxAge(int(seconds(s.cfg.CookieLifetime))),
		)
	}
	if err := s.transport.SetCookie(cookie.New(s.cfg.Name, s.id, opts...)); err != nil {
		s.logger.WarnContext(ctx, "failed to set session cookie", logger.Error(err))
	}
}

func (s *Session) cookieOptions() []cookie.Option {
	sameSite, _ := parseSameSite(s.cfg.CookieSameSite)
	return []cookie.Option{
		cookie.WithPath(s.cfg.CookiePath),
		cookie.WithDomain(s.cfg.CookieDomain),
		cookie.WithSecure(s.cfg.CookieSecure),
		cookie.WithHTTPOnly(s.cfg.CookieHTTPOnly),
		cookie.WithSameSite(sameSite),
	}
}

func (s *Session) logDestroyError(ctx context.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.DebugContext(ctx, "no stored session data to destroy")
		return
	}
	s.logger.WarnContext(ctx, "failed to destroy session data",
		logger.Operation("destroy"), logger.Error(err))
}

func (s *Session) validID(id string) bool {
	if v, ok := s.handler.(IDValidator); ok {
		return v.IDIsValid(id)
	}
	return sessionid.IsValid(id)
}

func (s *Session) reset() {
	s.id = ""
	s.Data = nil
}
