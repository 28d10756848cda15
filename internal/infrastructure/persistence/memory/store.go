// Package memory provides in-process repositories for the memory database
// driver and for service tests. All repositories share one Store; Execute
// gives a transaction with snapshot rollback.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/identity"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
)

type state struct {
	products map[uuid.UUID]catalog.Product
	clients  map[uuid.UUID]partner.Client
	sales    map[uuid.UUID]sale.Sale
	users    map[uuid.UUID]identity.User
	entries  []partner.BalanceEntry
}

func newState() *state {
	return &state{
		products: make(map[uuid.UUID]catalog.Product),
		clients:  make(map[uuid.UUID]partner.Client),
		sales:    make(map[uuid.UUID]sale.Sale),
		users:    make(map[uuid.UUID]identity.User),
	}
}

// snapshot copies the maps. Stored values are never mutated in place, so the
// entries themselves can be shared.
func (st *state) snapshot() *state {
	cp := &state{
		products: make(map[uuid.UUID]catalog.Product, len(st.products)),
		clients:  make(map[uuid.UUID]partner.Client, len(st.clients)),
		sales:    make(map[uuid.UUID]sale.Sale, len(st.sales)),
		users:    make(map[uuid.UUID]identity.User, len(st.users)),
		entries:  append([]partner.BalanceEntry(nil), st.entries...),
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	for k, v := range st.clients {
		cp.clients[k] = v
	}
	for k, v := range st.sales {
		cp.sales[k] = v
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	return cp
}

// Store holds all ledger data in memory
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{st: newState()}
}

// view runs fn against the state, taking the lock unless already inside Execute
func (s *Store) view(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

// Execute runs fn with repositories bound to one transaction. The store is
// locked for the duration and restored if fn returns an error.
func (s *Store) Execute(_ context.Context, fn func(repos saleapp.TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.st.snapshot()
	if err := fn(&txRepos{store: s}); err != nil {
		s.st = before
		return err
	}
	return nil
}

// Products returns the product repository
func (s *Store) Products() *ProductRepository { return &ProductRepository{store: s} }

// Clients returns the client repository
func (s *Store) Clients() *ClientRepository { return &ClientRepository{store: s} }

// BalanceEntries returns the balance entry repository
func (s *Store) BalanceEntries() *BalanceEntryRepository { return &BalanceEntryRepository{store: s} }

// Sales returns the sale repository
func (s *Store) Sales() *SaleRepository { return &SaleRepository{store: s} }

// Users returns the user repository
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

type txRepos struct {
	store *Store
}

func (r *txRepos) SaleRepo() sale.Repository {
	return &SaleRepository{store: r.store, inTx: true}
}

func (r *txRepos) ProductRepo() catalog.ProductRepository {
	return &ProductRepository{store: r.store, inTx: true}
}

func (r *txRepos) ClientRepo() partner.ClientRepository {
	return &ClientRepository{store: r.store, inTx: true}
}

func (r *txRepos) BalanceEntryRepo() partner.BalanceEntryRepository {
	return &BalanceEntryRepository{store: r.store, inTx: true}
}

var _ saleapp.TransactionScope = (*Store)(nil)
