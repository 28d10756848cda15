package sale

import (
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated = "SaleCreated"
	EventTypeSaleUpdated = "SaleUpdated"
	EventTypeSaleDeleted = "SaleDeleted"
)

// SaleCreatedEvent is published after a sale was committed
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Status     Status          `json:"status"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale, actor uuid.UUID) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID, actor),
		SaleID:          s.ID,
		ClientID:        s.ClientID,
		TotalValue:      s.TotalValue,
		TotalPaid:       s.TotalPaid,
		Status:          s.Status,
	}
}

// SaleUpdatedEvent is published after an edited sale was committed
type SaleUpdatedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Status     Status          `json:"status"`
}

// NewSaleUpdatedEvent creates a new SaleUpdatedEvent
func NewSaleUpdatedEvent(s *Sale, actor uuid.UUID) *SaleUpdatedEvent {
	return &SaleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleUpdated, AggregateTypeSale, s.ID, actor),
		SaleID:          s.ID,
		ClientID:        s.ClientID,
		TotalValue:      s.TotalValue,
		TotalPaid:       s.TotalPaid,
		Status:          s.Status,
	}
}

// SaleDeletedEvent is published after a sale and its effects were removed
type SaleDeletedEvent struct {
	shared.BaseDomainEvent
	SaleID   uuid.UUID `json:"sale_id"`
	ClientID uuid.UUID `json:"client_id"`
}

// NewSaleDeletedEvent creates a new SaleDeletedEvent
func NewSaleDeletedEvent(s *Sale, actor uuid.UUID) *SaleDeletedEvent {
	return &SaleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleDeleted, AggregateTypeSale, s.ID, actor),
		SaleID:          s.ID,
		ClientID:        s.ClientID,
	}
}
