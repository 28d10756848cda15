package partner

import (
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeClient = "Client"

const (
	EventTypeClientCreated        = "ClientCreated"
	EventTypeClientBalanceChanged = "ClientBalanceChanged"
)

// ClientCreatedEvent is published when a new client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID, uuid.Nil),
		ClientID:        c.ID,
		Name:            c.Name,
	}
}

// ClientBalanceChangedEvent is published after a balance entry was written
type ClientBalanceChangedEvent struct {
	shared.BaseDomainEvent
	ClientID      uuid.UUID        `json:"client_id"`
	Kind          BalanceEntryKind `json:"kind"`
	Amount        decimal.Decimal  `json:"amount"`
	BalanceBefore decimal.Decimal  `json:"balance_before"`
	BalanceAfter  decimal.Decimal  `json:"balance_after"`
	SaleID        *uuid.UUID       `json:"sale_id,omitempty"`
}

// NewClientBalanceChangedEvent creates a new ClientBalanceChangedEvent from a ledger entry
func NewClientBalanceChangedEvent(e *BalanceEntry) *ClientBalanceChangedEvent {
	var actor uuid.UUID
	if e.OperatorID != nil {
		actor = *e.OperatorID
	}
	return &ClientBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientBalanceChanged, AggregateTypeClient, e.ClientID, actor),
		ClientID:        e.ClientID,
		Kind:            e.Kind,
		Amount:          e.Amount,
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		SaleID:          e.SaleID,
	}
}
