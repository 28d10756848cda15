package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("handles an event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newRecordingHandler(sale.EventTypeSaleCreated)
		h := NewIdempotentHandler(inner, store, zap.NewNop())

		event := saleCreated(t)
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, saleCreated(t)))

		assert.Len(t, inner.getHandled(), 2)
		assert.Equal(t, IdempotencyStats{EventsProcessed: 2, EventsDuplicate: 1}, h.Stats())
		assert.Equal(t, []string{sale.EventTypeSaleCreated}, h.EventTypes())
	})

	t.Run("failed handling keeps the key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newRecordingHandler()
		inner.setError(errors.New("exporter unavailable"))
		h := NewIdempotentHandler(inner, store, nil)

		event := saleCreated(t)
		assert.Error(t, h.Handle(ctx, event))
		assert.NoError(t, h.Handle(ctx, event))

		assert.Len(t, inner.getHandled(), 1)
		assert.EqualValues(t, 1, h.Stats().EventsFailed)
	})

	t.Run("store failure still processes", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, mock.AnythingOfType("string"), 24*time.Hour).
			Return(false, errors.New("redis timeout"))
		inner := newRecordingHandler()
		h := NewIdempotentHandler(inner, store, zap.NewNop())

		require.NoError(t, h.Handle(ctx, saleCreated(t)))
		assert.Len(t, inner.getHandled(), 1)
		store.AssertExpectations(t)
	})

	t.Run("disabled skips the store", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newRecordingHandler()
		h := NewIdempotentHandler(inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))

		event := saleCreated(t)
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		assert.Len(t, inner.getHandled(), 2)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}
