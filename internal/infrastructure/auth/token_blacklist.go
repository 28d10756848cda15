package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/cache"
)

// TokenBlacklist revokes session tokens by JTI before they expire. Logout
// adds the token for its remaining lifetime.
type TokenBlacklist interface {
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// StoreBlacklist records revocations as expiring keys in an idempotency
// store, so it shares Redis (or process memory) with request replay
// protection.
type StoreBlacklist struct {
	store shared.IdempotencyStore
}

func NewStoreBlacklist(store shared.IdempotencyStore) *StoreBlacklist {
	return &StoreBlacklist{store: store}
}

// NewRedisTokenBlacklist shares revocations between server instances.
func NewRedisTokenBlacklist(client redis.UniversalClient) *StoreBlacklist {
	return NewStoreBlacklist(cache.NewRedisIdempotencyStore(client, "ledger:token:revoked:"))
}

// NewInMemoryTokenBlacklist only sees logouts handled by this process.
func NewInMemoryTokenBlacklist() *StoreBlacklist {
	return NewStoreBlacklist(cache.NewInMemoryIdempotencyStore())
}

// AddToBlacklist ignores tokens that have already expired.
func (b *StoreBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if _, err := b.store.MarkProcessed(ctx, jti, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *StoreBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	revoked, err := b.store.IsProcessed(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return revoked, nil
}

var _ TokenBlacklist = (*StoreBlacklist)(nil)
