package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByIDForUpdate loads a client and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAll lists clients; Filter.Search matches the name ignoring case and accents
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Create(ctx context.Context, client *Client) error

	// Update persists changes, failing with CONCURRENCY_CONFLICT on a stale version
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BalanceEntryRepository stores the append-only balance history
type BalanceEntryRepository interface {
	Create(ctx context.Context, entry *BalanceEntry) error

	// FindByClient returns a client's entries newest first, with the total count
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]BalanceEntry, int64, error)

	// FindBySale returns all entries caused by a sale, oldest first
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]BalanceEntry, error)
}
