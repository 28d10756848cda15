package catalog

import (
	"strings"
	"time"

	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with a sale price and an on-hand stock count.
// StockQuantity never goes below zero.
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Description   string
	SalePrice     decimal.Decimal
	StockQuantity int
}

// NewProduct creates a new product
func NewProduct(name string, salePrice decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateSalePrice(salePrice); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, shared.NewValidationError("INVALID_STOCK", "Stock quantity cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SalePrice:         salePrice,
		StockQuantity:     stock,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update updates the product profile
func (p *Product) Update(name, description string, salePrice decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateSalePrice(salePrice); err != nil {
		return err
	}

	oldPrice := p.SalePrice
	p.Name = name
	p.Description = description
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()

	if !oldPrice.Equal(salePrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

// SetStock overwrites the on-hand quantity. Used by manual stock edits.
func (p *Product) SetStock(quantity int) error {
	if quantity < 0 {
		return shared.NewValidationError("INVALID_STOCK", "Stock quantity cannot be negative")
	}
	before := p.StockQuantity
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewProductStockAdjustedEvent(p, before, StockReasonManual))
	return nil
}

// Debit removes qty units from stock, clamping at zero.
// It returns the number of units actually removed.
func (p *Product) Debit(qty int) int {
	if qty <= 0 {
		return 0
	}
	removed := qty
	if removed > p.StockQuantity {
		removed = p.StockQuantity
	}
	p.StockQuantity -= removed
	p.UpdatedAt = time.Now()
	return removed
}

// Credit returns qty units to stock. There is no upper bound.
func (p *Product) Credit(qty int) {
	if qty <= 0 {
		return
	}
	p.StockQuantity += qty
	p.UpdatedAt = time.Now()
}

// InStock reports whether at least one unit is on hand
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateSalePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Sale price cannot be negative")
	}
	if !shared.IsMoney(price) {
		return shared.NewValidationError("INVALID_PRICE", "Sale price cannot have fractions of a cent")
	}
	return nil
}
