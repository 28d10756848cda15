package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
)

// ProductRepository implements catalog.ProductRepository in memory
type ProductRepository struct {
	store *Store
	inTx  bool
}

func cloneProduct(p catalog.Product) *catalog.Product {
	p.BaseAggregateRoot = detach(p.BaseAggregateRoot)
	return &p
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	var out *catalog.Product
	err := r.store.view(r.inTx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = cloneProduct(p)
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID; the store lock already serializes transactions
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *ProductRepository) filtered(st *state, filter shared.Filter) []catalog.Product {
	inStock, hasInStock := filter.Filters["in_stock"].(bool)
	var out []catalog.Product
	for _, p := range st.products {
		if !matchesSearch(p.Name, filter.Search) {
			continue
		}
		if hasInStock && p.InStock() != inStock {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	return out
}

// FindAll lists products by name
func (r *ProductRepository) FindAll(_ context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.store.view(r.inTx, func(st *state) error {
		out = r.filtered(st, filter)
		desc := descending(filter, false)
		sort.SliceStable(out, func(i, j int) bool {
			a, b := models.FoldName(out[i].Name), models.FoldName(out[j].Name)
			if a == b {
				return out[i].ID.String() < out[j].ID.String()
			}
			return (a < b) != desc
		})
		out = paginate(out, filter)
		return nil
	})
	return out, err
}

// Count counts products matching the filter
func (r *ProductRepository) Count(_ context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.store.view(r.inTx, func(st *state) error {
		n = int64(len(r.filtered(st, filter)))
		return nil
	})
	return n, err
}

// Create inserts a new product
func (r *ProductRepository) Create(_ context.Context, product *catalog.Product) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, exists := st.products[product.ID]; exists {
			return shared.ErrAlreadyExists
		}
		st.products[product.ID] = *cloneProduct(*product)
		return nil
	})
}

// Update writes the product if its version is unchanged and advances the version
func (r *ProductRepository) Update(_ context.Context, product *catalog.Product) error {
	return r.store.view(r.inTx, func(st *state) error {
		current, ok := st.products[product.ID]
		if !ok || current.Version != product.Version {
			return shared.ErrConcurrencyConflict
		}
		next := cloneProduct(*product)
		next.Version++
		st.products[product.ID] = *next
		product.Version++
		return nil
	})
}

// Delete deletes a product
func (r *ProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return shared.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)
