package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
)

// Filter narrows sale listings
type Filter struct {
	shared.Filter
	ClientID *uuid.UUID
	Status   *Status
	From     *time.Time
	To       *time.Time
}

// Repository defines the interface for sale persistence.
// Items and payments are stored and loaded together with the sale.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate loads a sale and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	FindAll(ctx context.Context, filter Filter) ([]Sale, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ExistsForClient reports whether any sale references the client
	ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error)

	// Create inserts the sale with its items and payments
	Create(ctx context.Context, s *Sale) error

	// Update replaces the sale, its items and its payments, failing with
	// CONCURRENCY_CONFLICT on a stale version
	Update(ctx context.Context, s *Sale) error

	Delete(ctx context.Context, id uuid.UUID) error
}
