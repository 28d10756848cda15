package event

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T) *sale.Sale {
	t.Helper()
	s, err := sale.NewSale(sale.Draft{
		Client: sale.ClientRef{ID: uuid.New(), Name: "Ana"},
		Items: []sale.LineItem{{
			ProductID:   uuid.New(),
			ProductName: "Pão de queijo",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(5),
		}},
		Payments: []sale.Payment{{Method: sale.PaymentMethodPix, Amount: decimal.NewFromInt(10)}},
	}, sale.DefaultSaleCap, uuid.New())
	require.NoError(t, err)
	return s
}

func saleCreated(t *testing.T) *sale.SaleCreatedEvent {
	return sale.NewSaleCreatedEvent(newTestSale(t), uuid.New())
}

func saleDeleted(t *testing.T) *sale.SaleDeletedEvent {
	return sale.NewSaleDeletedEvent(newTestSale(t), uuid.New())
}

// recordingHandler implements EventHandler for testing
type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *recordingHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}
