package redisstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	redisx "github.com/dmitrymomot/userland/pkg/redis"
	"github.com/dmitrymomot/userland/pkg/session"
)

const (
	fieldData      = "data"
	fieldWrittenAt = "written_at"
)

// Store is a session.Handler backed by Redis. It remembers the name passed
// to Open, so sessions with different names need their own Store; Clone
// makes one.
type Store struct {
	client    Client
	prefix    string
	ttl       time.Duration
	batchSize int64
	now       func() time.Time

	mu   sync.RWMutex
	name string
}

var _ session.Handler = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source for written_at and GC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Redis store.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Client == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("client is required"))
	}
	if cfg.KeyTTL < 0 {
		return nil, errors.Join(ErrInvalidConfig, errors.New("key ttl must not be negative"))
	}

	s := &Store{
		client:    cfg.Client,
		prefix:    cfg.KeyPrefix,
		ttl:       cfg.KeyTTL,
		batchSize: cfg.ScanBatchSize,
		now:       time.Now,
	}
	if s.batchSize <= 0 {
		s.batchSize = 500
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Clone returns a Store on the same client and settings with no name.
// Its signature fits session.HandlerFactory.
func (s *Store) Clone() session.Handler {
	return &Store{
		client:    s.client,
		prefix:    s.prefix,
		ttl:       s.ttl,
		batchSize: s.batchSize,
		now:       s.now,
	}
}

// Open remembers name for the keys of later calls.
func (s *Store) Open(_ context.Context, _, name string) error {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the client outlives single sessions.
func (s *Store) Close(context.Context) error {
	return nil
}

func (s *Store) openName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Read returns the data field of the record hash.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key(id), fieldData).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write stores data with the write time and refreshes the key TTL.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	key := s.key(id)
	if err := s.client.HSet(ctx, key,
		fieldData, data,
		fieldWrittenAt, s.now().Unix(),
	).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

// Destroy deletes the record key.
func (s *Store) Destroy(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

// GC deletes this name's records written more than maxLifetime ago.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) error {
	now := s.now().Unix()
	limit := int64(maxLifetime / time.Second)
	match := s.prefix + s.openName() + "_*"

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, s.batchSize).Result()
		if err != nil {
			return err
		}

		var expired []string
		for _, key := range keys {
			raw, err := s.client.HGet(ctx, key, fieldWrittenAt).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return err
			}
			writtenAt, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			if now-writtenAt > limit {
				expired = append(expired, key)
			}
		}
		if len(expired) > 0 {
			if err := s.client.Del(ctx, expired...).Err(); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Healthcheck pings Redis.
func (s *Store) Healthcheck(ctx context.Context) error {
	return redisx.Healthcheck(s.client)(ctx)
}

func (s *Store) key(id string) string {
	return s.prefix + s.openName() + "_" + id
}
