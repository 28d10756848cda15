package telemetry

import (
	"context"
	"fmt"

	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records sale and balance counters from committed domain events.
// It is registered on the event bus so the services stay unaware of metrics.
type LedgerMetrics struct {
	salesTotal     metric.Int64Counter
	saleValue      metric.Float64Counter
	balanceChanges metric.Int64Counter
	balanceDelta   metric.Float64Histogram
}

// NewLedgerMetrics creates the ledger instruments on the given meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	m.salesTotal, err = meter.Int64Counter("ledger_sales_total",
		metric.WithDescription("Sales committed, by operation and status"),
		metric.WithUnit("{sale}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger_sales_total: %w", err)
	}

	m.saleValue, err = meter.Float64Counter("ledger_sale_value_total",
		metric.WithDescription("Sum of sale totals at creation"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger_sale_value_total: %w", err)
	}

	m.balanceChanges, err = meter.Int64Counter("ledger_balance_changes_total",
		metric.WithDescription("Client balance movements, by kind"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger_balance_changes_total: %w", err)
	}

	m.balanceDelta, err = meter.Float64Histogram("ledger_balance_delta",
		metric.WithDescription("Absolute amount of each client balance movement"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger_balance_delta: %w", err)
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		sale.EventTypeSaleCreated,
		sale.EventTypeSaleUpdated,
		sale.EventTypeSaleDeleted,
		partner.EventTypeClientBalanceChanged,
	}
}

// Handle implements shared.EventHandler
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sale.SaleCreatedEvent:
		m.salesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "create"),
			attribute.String("status", string(e.Status)),
		))
		m.saleValue.Add(ctx, e.TotalValue.InexactFloat64())
	case *sale.SaleUpdatedEvent:
		m.salesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "update"),
			attribute.String("status", string(e.Status)),
		))
	case *sale.SaleDeletedEvent:
		m.salesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	case *partner.ClientBalanceChangedEvent:
		kind := attribute.String("kind", string(e.Kind))
		m.balanceChanges.Add(ctx, 1, metric.WithAttributes(kind))
		m.balanceDelta.Record(ctx, e.Amount.Abs().InexactFloat64(), metric.WithAttributes(kind))
	}
	return nil
}
