package sale_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type ledgerFixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	publisher *recordingPublisher
	service   *saleapp.LedgerService
	operator  uuid.UUID
}

func newLedgerFixture(t *testing.T, opts ...saleapp.LedgerOption) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	operator := uuid.New()
	opts = append([]saleapp.LedgerOption{saleapp.WithEventPublisher(publisher)}, opts...)
	return &ledgerFixture{
		t:         t,
		ctx:       shared.WithSession(context.Background(), shared.Session{UserID: operator, Username: "caixa"}),
		store:     store,
		publisher: publisher,
		service:   saleapp.NewLedgerService(store.Sales(), store, zap.NewNop(), opts...),
		operator:  operator,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *ledgerFixture) product(name, price string, stock int) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(name, dec(price), stock)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *ledgerFixture) client(name, balance string) *partner.Client {
	f.t.Helper()
	c, err := partner.NewClient(name, nil, nil)
	require.NoError(f.t, err)
	c.ApplyBalanceDelta(dec(balance))
	require.NoError(f.t, f.store.Clients().Create(context.Background(), c))
	return c
}

func (f *ledgerFixture) stock(id uuid.UUID) int {
	f.t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(f.t, err)
	return p.StockQuantity
}

func (f *ledgerFixture) balance(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	c, err := f.store.Clients().FindByID(context.Background(), id)
	require.NoError(f.t, err)
	return c.Balance
}

func (f *ledgerFixture) entryKinds(saleID uuid.UUID) map[partner.BalanceEntryKind]decimal.Decimal {
	f.t.Helper()
	entries, err := f.store.BalanceEntries().FindBySale(context.Background(), saleID)
	require.NoError(f.t, err)
	out := make(map[partner.BalanceEntryKind]decimal.Decimal, len(entries))
	for _, e := range entries {
		out[e.Kind] = out[e.Kind].Add(e.Amount)
	}
	return out
}

func item(p *catalog.Product, qty int) saleapp.LineItemInput {
	return saleapp.LineItemInput{ProductID: p.ID, Quantity: qty}
}

func cash(amount string) saleapp.PaymentInput {
	return saleapp.PaymentInput{Method: "cash", Amount: dec(amount)}
}

func boolPtr(b bool) *bool { return &b }
