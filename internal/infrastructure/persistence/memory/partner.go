package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
)

// ClientRepository implements partner.ClientRepository in memory
type ClientRepository struct {
	store *Store
	inTx  bool
}

func cloneClient(c partner.Client) *partner.Client {
	c.BaseAggregateRoot = detach(c.BaseAggregateRoot)
	c.Contacts = append([]partner.Contact(nil), c.Contacts...)
	if c.Address != nil {
		addr := *c.Address
		c.Address = &addr
	}
	return &c
}

// FindByID finds a client by its ID
func (r *ClientRepository) FindByID(_ context.Context, id uuid.UUID) (*partner.Client, error) {
	var out *partner.Client
	err := r.store.view(r.inTx, func(st *state) error {
		c, ok := st.clients[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = cloneClient(c)
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID; the store lock already serializes transactions
func (r *ClientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return r.FindByID(ctx, id)
}

func (r *ClientRepository) filtered(st *state, filter shared.Filter) []partner.Client {
	hasBalance, byBalance := filter.Filters["has_balance"].(bool)
	var out []partner.Client
	for _, c := range st.clients {
		if !matchesSearch(c.Name, filter.Search) {
			continue
		}
		if byBalance && c.Balance.IsZero() == hasBalance {
			continue
		}
		out = append(out, *cloneClient(c))
	}
	return out
}

// FindAll lists clients by name
func (r *ClientRepository) FindAll(_ context.Context, filter shared.Filter) ([]partner.Client, error) {
	var out []partner.Client
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

// Count counts clients matching the filter
func (r *ClientRepository) Count(_ context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.store.view(r.inTx, func(st *state) error {
		n = int64(len(r.filtered(st, filter)))
		return nil
	})
	return n, err
}

// Create inserts a new client
func (r *ClientRepository) Create(_ context.Context, client *partner.Client) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, exists := st.clients[client.ID]; exists {
			return shared.ErrAlreadyExists
		}
		st.clients[client.ID] = *cloneClient(*client)
		return nil
	})
}

// Update writes the client if its version is unchanged and advances the version
func (r *ClientRepository) Update(_ context.Context, client *partner.Client) error {
	return r.store.view(r.inTx, func(st *state) error {
		current, ok := st.clients[client.ID]
		if !ok || current.Version != client.Version {
			return shared.ErrConcurrencyConflict
		}
		next := cloneClient(*client)
		next.Version++
		st.clients[client.ID] = *next
		client.Version++
		return nil
	})
}

// Delete deletes a client and its balance history
func (r *ClientRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.store.view(r.inTx, func(st *state) error {
		if _, ok := st.clients[id]; !ok {
			return shared.ErrNotFound
		}
		delete(st.clients, id)
		kept := st.entries[:0:0]
		for _, e := range st.entries {
			if e.ClientID != id {
				kept = append(kept, e)
			}
		}
		st.entries = kept
		return nil
	})
}

// BalanceEntryRepository implements partner.BalanceEntryRepository in memory.
// Entries are kept in insertion order.
type BalanceEntryRepository struct {
	store *Store
	inTx  bool
}

// Create appends an entry
func (r *BalanceEntryRepository) Create(_ context.Context, entry *partner.BalanceEntry) error {
	return r.store.view(r.inTx, func(st *state) error {
		st.entries = append(st.entries, *entry)
		return nil
	})
}

// FindByClient returns a client's entries newest first with the total count
func (r *BalanceEntryRepository) FindByClient(_ context.Context, clientID uuid.UUID, filter shared.Filter) ([]partner.BalanceEntry, int64, error) {
	kind, _ := filter.Filters["kind"].(string)
	var out []partner.BalanceEntry
	err := r.store.view(r.inTx, func(st *state) error {
		for i := len(st.entries) - 1; i >= 0; i-- {
			e := st.entries[i]
			if e.ClientID != clientID || (kind != "" && string(e.Kind) != kind) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(out))
	return paginate(out, filter), total, nil
}

// FindBySale returns all entries caused by a sale, oldest first
func (r *BalanceEntryRepository) FindBySale(_ context.Context, saleID uuid.UUID) ([]partner.BalanceEntry, error) {
	var out []partner.BalanceEntry
	err := r.store.view(r.inTx, func(st *state) error {
		for _, e := range st.entries {
			if e.SaleID != nil && *e.SaleID == saleID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

var (
	_ partner.ClientRepository       = (*ClientRepository)(nil)
	_ partner.BalanceEntryRepository = (*BalanceEntryRepository)(nil)
)
