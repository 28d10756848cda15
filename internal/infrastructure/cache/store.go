package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOptions picks the backing of the request idempotency store.
type StoreOptions struct {
	Redis config.RedisConfig
	// Client is reused when set; otherwise one is dialled from Redis.
	Client *redis.Client
	// RequireRedis turns an unreachable Redis into an error instead of a
	// per-instance memory store.
	RequireRedis bool
	Logger       *zap.Logger
}

// OpenIdempotencyStore returns a Redis backed store when Redis is configured
// and reachable, and the in-memory store otherwise.
func OpenIdempotencyStore(ctx context.Context, opts StoreOptions) (shared.IdempotencyStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	client := opts.Client
	if client == nil {
		if opts.Redis.Host == "" {
			log.Info("Idempotency store: memory (redis not configured)")
			return NewInMemoryIdempotencyStore(), nil
		}
		var err error
		if client, err = NewRedisClient(ctx, opts.Redis); err != nil {
			if opts.RequireRedis {
				return nil, fmt.Errorf("idempotency store needs redis at %s: %w", opts.Redis.Addr(), err)
			}
			log.Warn("Idempotency store: memory, redis unreachable; replays are caught per instance only",
				zap.String("addr", opts.Redis.Addr()), zap.Error(err))
			return NewInMemoryIdempotencyStore(), nil
		}
	}

	log.Info("Idempotency store: redis")
	return NewRedisIdempotencyStore(client, ""), nil
}
