package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds all products matching the filter. Filter.Search matches the name
	// ignoring case and accents.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Update persists changes, failing with CONCURRENCY_CONFLICT on a stale version
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
