package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userland/pkg/config"
	"github.com/dmitrymomot/userland/pkg/mongo"
)

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://db.internal:27017")
	t.Setenv("MONGODB_DATABASE", "sessions")

	var cfg mongo.Config
	require.NoError(t, config.Load(&cfg, config.NoCache()))
	assert.Equal(t, "mongodb://db.internal:27017", cfg.ConnectionURL)
	assert.Equal(t, "sessions", cfg.Database)
	assert.Equal(t, uint64(100), cfg.MaxPoolSize)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	opts := mongo.ClientOptions(mongo.Config{
		ConnectionURL: "mongodb://localhost:27017",
		MaxPoolSize:   5,
		MinPoolSize:   2,
	})
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(5), *opts.MaxPoolSize)
	require.NotNil(t, opts.MinPoolSize)
	assert.Equal(t, uint64(2), *opts.MinPoolSize)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := mongo.New(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)

	_, err = mongo.New(context.Background(), mongo.Config{ConnectionURL: "not-a-uri", RetryAttempts: 1})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestNew_Integration(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set")
	}
	ctx := context.Background()

	client, err := mongo.New(ctx, mongo.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	assert.NoError(t, mongo.Healthcheck(client)(ctx))
}
