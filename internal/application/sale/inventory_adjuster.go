package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockMovement describes one applied stock change
type StockMovement struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
}

// Clamped reports whether a debit removed fewer units than requested
func (m StockMovement) Clamped() bool {
	moved := m.After - m.Before
	if moved < 0 {
		moved = -moved
	}
	return moved != m.Requested
}

// AdjustmentReport lists the movements applied for a sale and the products
// that no longer exist and were skipped
type AdjustmentReport struct {
	Applied []StockMovement `json:"applied"`
	Skipped []uuid.UUID     `json:"skipped,omitempty"`
}

func (r *AdjustmentReport) merge(other AdjustmentReport) {
	r.Applied = append(r.Applied, other.Applied...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// InventoryAdjuster moves product stock for sales. Debits clamp at zero,
// credits are unbounded. A product that no longer exists is skipped.
type InventoryAdjuster struct {
	logger *zap.Logger
}

// NewInventoryAdjuster creates a new InventoryAdjuster
func NewInventoryAdjuster(log *zap.Logger) *InventoryAdjuster {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryAdjuster{logger: log}
}

// Debit removes qty units from a product, never going below zero
func (a *InventoryAdjuster) Debit(ctx context.Context, products catalog.ProductRepository, productID uuid.UUID, qty int) (StockMovement, error) {
	return a.adjust(ctx, products, productID, qty, func(p *catalog.Product) { p.Debit(qty) })
}

// Credit returns qty units to a product
func (a *InventoryAdjuster) Credit(ctx context.Context, products catalog.ProductRepository, productID uuid.UUID, qty int) (StockMovement, error) {
	return a.adjust(ctx, products, productID, qty, func(p *catalog.Product) { p.Credit(qty) })
}

// ApplyForSale debits every line item of the sale
func (a *InventoryAdjuster) ApplyForSale(ctx context.Context, products catalog.ProductRepository, s *sale.Sale) (AdjustmentReport, error) {
	return a.forSale(ctx, products, s, a.Debit)
}

// ReverseForSale credits every line item of the sale
func (a *InventoryAdjuster) ReverseForSale(ctx context.Context, products catalog.ProductRepository, s *sale.Sale) (AdjustmentReport, error) {
	return a.forSale(ctx, products, s, a.Credit)
}

type stockOp func(ctx context.Context, products catalog.ProductRepository, productID uuid.UUID, qty int) (StockMovement, error)

func (a *InventoryAdjuster) forSale(ctx context.Context, products catalog.ProductRepository, s *sale.Sale, op stockOp) (AdjustmentReport, error) {
	report := AdjustmentReport{Applied: make([]StockMovement, 0, len(s.Items))}
	for _, item := range s.Items {
		mv, err := op(ctx, products, item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				a.logger.Warn("Product missing, stock adjustment skipped",
					zap.String("sale_id", s.ID.String()),
					zap.String("product_id", item.ProductID.String()),
					zap.Int("quantity", item.Quantity),
				)
				report.Skipped = append(report.Skipped, item.ProductID)
				continue
			}
			return report, err
		}
		report.Applied = append(report.Applied, mv)
	}
	return report, nil
}

func (a *InventoryAdjuster) adjust(ctx context.Context, products catalog.ProductRepository, productID uuid.UUID, qty int, mutate func(*catalog.Product)) (StockMovement, error) {
	p, err := products.FindByIDForUpdate(ctx, productID)
	if err != nil {
		return StockMovement{}, err
	}
	mv := StockMovement{ProductID: productID, Requested: qty, Before: p.StockQuantity}
	mutate(p)
	mv.After = p.StockQuantity

	if err := products.Update(ctx, p); err != nil {
		return StockMovement{}, err
	}
	if mv.Clamped() {
		a.logger.Debug("Stock debit clamped at zero",
			zap.String("product_id", productID.String()),
			zap.Int("requested", qty),
			zap.Int("before", mv.Before),
		)
	}
	return mv, nil
}
