package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
)

// SaleRepository implements sale.Repository in memory
type SaleRepository struct {
	store *Store
	inTx  bool
}

func cloneSale(s sale.Sale) *sale.Sale {
	s.BaseAggregateRoot = detach(s.BaseAggregateRoot)
	s.Items = append([]sale.LineItem(nil), s.Items...)
	s.Payments = append([]sale.Payment(nil), s.Payments...)
	s.Recalculate()
	return &s
}

// FindByID finds a sale with its items and payments
func (r *SaleRepository) FindByID(_ context.Context, id uuid.UUID) (*sale.Sale, error) {
	var out *sale.Sale
	err := r.store.view(r.inTx, func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = cloneSale(s)
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID; the store lock already serializes transactions
func (r *SaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	return r.FindByID(ctx, id)
}

func matchesSale(s *sale.Sale, filter sale.Filter) bool {
	if filter.ClientID != nil && s.ClientID != *filter.ClientID {
		return false
	}
	if filter.Status != nil && s.Status != *filter.Status {
		return false
	}
	if filter.From != nil && s.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !s.CreatedAt.Before(*filter.To) {
		return false
	}
	if filter.Search != "" &&
		!strings.Contains(strings.ToLower(s.ClientName), strings.ToLower(strings.TrimSpace(filter.Search))) {
		return false
	}
	return true
}

func (r *SaleRepository) filtered(st *state, filter sale.Filter) []sale.Sale {
	var out []sale.Sale
	for _, stored := range st.sales {
		s := cloneSale(stored)
		if matchesSale(s, filter) {
			out = append(out, *s)
		}
	}
	return out
}

// FindAll lists sales newest first unless the filter asks for ascending order
func (r *SaleRepository) FindAll(_ context.Context, filter sale.Filter) ([]sale.Sale, error) {
	var out []sale.Sale
	err := r.store.view(r.inTx, func(st *state) error {
		out = r.filtered(st, filter)
		desc := descending(filter.Filter, true)
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].CreatedAt, out[j].CreatedAt
			if a.Equal(b) {
				return out[i].ID.String() < out[j].ID.String()
			}
			return a.Before(b) != desc
		})
		out = paginate(out, filter.Filter)
		return nil
	})
	return out, err
}

// Count counts sales matching the filter
func (r *SaleRepository) Count(_ context.Context, filter sale.Filter) (int64, error) {
	var n int64
	err := r.store.view(r.inTx, func(st *state) error {
		n = int64(len(r.filtered(st, filter)))
		return nil
	})
	return n, err
}

// ExistsForClient reports whether any sale references the client
func (r *SaleRepository) ExistsForClient(_ context.Context, clientID uuid.UUID) (bool, error) {
	var found bool
	err := r.store.view(r.inTx, func(st *state) error {
		for _, s := range st.sales {
			if s.ClientID == clientID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// Create inserts the sale with its items and payments
func (r *SaleRepository) Create(_ context.Context, s *sale.Sale) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, exists := st.sales[s.ID]; exists {
			return shared.ErrAlreadyExists
		}
		st.sales[s.ID] = *cloneSale(*s)
		return nil
	})
}

// Update replaces the sale if its version is unchanged and advances the version
func (r *SaleRepository) Update(_ context.Context, s *sale.Sale) error {
	return r.store.view(r.inTx, func(st *state) error {
		current, ok := st.sales[s.ID]
		if !ok || current.Version != s.Version {
			return shared.ErrConcurrencyConflict
		}
		next := cloneSale(*s)
		next.Version++
		st.sales[s.ID] = *next
		s.Version++
		return nil
	})
}

// Delete removes the sale
func (r *SaleRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return shared.ErrNotFound
		}
		delete(st.sales, id)
		return nil
	})
}

var _ sale.Repository = (*SaleRepository)(nil)
