package catalog

import (
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductPriceChanged  = "ProductPriceChanged"
	EventTypeProductStockAdjusted = "ProductStockAdjusted"
)

// StockReason tells why stock moved outside of a sale
type StockReason string

const (
	StockReasonManual StockReason = "manual"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, uuid.Nil),
		ProductID:       p.ID,
		Name:            p.Name,
		SalePrice:       p.SalePrice,
		Stock:           p.StockQuantity,
	}
}

// ProductPriceChangedEvent is published when the sale price changes.
// Existing sales keep their line item snapshot.
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID, uuid.Nil),
		ProductID:       p.ID,
		OldPrice:        oldPrice,
		NewPrice:        p.SalePrice,
	}
}

// ProductStockAdjustedEvent is published on a manual stock edit
type ProductStockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID   `json:"product_id"`
	Before    int         `json:"before"`
	After     int         `json:"after"`
	Reason    StockReason `json:"reason"`
}

// NewProductStockAdjustedEvent creates a new ProductStockAdjustedEvent
func NewProductStockAdjustedEvent(p *Product, before int, reason StockReason) *ProductStockAdjustedEvent {
	return &ProductStockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockAdjusted, AggregateTypeProduct, p.ID, uuid.Nil),
		ProductID:       p.ID,
		Before:          before,
		After:           p.StockQuantity,
		Reason:          reason,
	}
}
