package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of redis.UniversalClient used by the store.
type Client interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Config holds Redis store configuration.
type Config struct {
	Client Client

	// KeyPrefix is prepended to every key.
	KeyPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"session:"`
	// KeyTTL, when positive, is set on every written key.
	KeyTTL time.Duration `env:"SESSION_REDIS_KEY_TTL" envDefault:"0s"`
	// ScanBatchSize is the COUNT hint for SCAN during GC.
	ScanBatchSize int64 `env:"SESSION_REDIS_SCAN_BATCH" envDefault:"500"`
}
