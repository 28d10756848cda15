package cache

import (
	"context"
	"testing"

	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	// nothing listens on port 1
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("memory when redis is not configured", func(t *testing.T) {
		store, err := OpenIdempotencyStore(ctx, StoreOptions{RequireRedis: true, Logger: zaptest.NewLogger(t)})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("memory when redis is unreachable", func(t *testing.T) {
		store, err := OpenIdempotencyStore(ctx, StoreOptions{Redis: unreachable})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("error when redis is required", func(t *testing.T) {
		_, err := OpenIdempotencyStore(ctx, StoreOptions{Redis: unreachable, RequireRedis: true})
		assert.ErrorContains(t, err, "127.0.0.1:1")
	})
}
