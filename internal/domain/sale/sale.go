package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Sale is the aggregate root of the ledger. TotalValue, TotalPaid and Status
// are derived from Items and Payments by Recalculate and are only read-side
// copies of those inputs.
type Sale struct {
	shared.BaseAggregateRoot
	ClientID      uuid.UUID
	ClientName    string
	Kind          Kind
	Items         []LineItem
	Payments      []Payment
	TotalValue    decimal.Decimal
	TotalPaid     decimal.Decimal
	Status        Status
	CreditApplied decimal.Decimal
	Notes         string
	CreatedBy     *uuid.UUID
}

// Draft carries the caller-editable part of a sale
type Draft struct {
	Client   ClientRef
	Kind     Kind
	Items    []LineItem
	Payments []Payment
	Notes    string
}

// NewSale validates a draft against the cap and builds a new sale
func NewSale(d Draft, limit decimal.Decimal, createdBy uuid.UUID) (*Sale, error) {
	s := &Sale{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := s.apply(d, limit); err != nil {
		return nil, err
	}
	if createdBy != uuid.Nil {
		s.CreatedBy = &createdBy
	}
	s.AddDomainEvent(NewSaleCreatedEvent(s, createdBy))
	return s, nil
}

// Revise replaces the editable content of the sale. ID and CreatedAt are kept.
// Any credit previously applied is cleared and must be decided again.
func (s *Sale) Revise(d Draft, limit decimal.Decimal, editedBy uuid.UUID) error {
	next := *s
	next.Items = nil
	next.Payments = nil
	if err := next.apply(d, limit); err != nil {
		return err
	}
	next.CreditApplied = decimal.Zero
	next.UpdatedAt = time.Now()
	*s = next
	s.AddDomainEvent(NewSaleUpdatedEvent(s, editedBy))
	return nil
}

// MarkDeleted records the deletion event
func (s *Sale) MarkDeleted(deletedBy uuid.UUID) {
	s.AddDomainEvent(NewSaleDeletedEvent(s, deletedBy))
}

func (s *Sale) apply(d Draft, limit decimal.Decimal) error {
	if d.Client.ID == uuid.Nil {
		return shared.NewValidationError("INVALID_CLIENT", "A sale requires a client")
	}
	kind := d.Kind
	if kind == "" {
		kind = KindCashSale
	}
	if !kind.IsValid() {
		return shared.NewValidationError("INVALID_SALE_KIND", "Unknown sale kind: "+string(kind))
	}
	if err := ValidateLineItems(d.Items, limit); err != nil {
		return err
	}
	payments, err := ValidatePayments(d.Payments)
	if err != nil {
		return err
	}

	s.ClientID = d.Client.ID
	s.ClientName = d.Client.Name
	s.Kind = kind
	s.Items = append([]LineItem(nil), d.Items...)
	s.Payments = payments
	s.Notes = d.Notes
	s.Recalculate()
	return nil
}

// Recalculate recomputes the derived totals and status from items and payments
func (s *Sale) Recalculate() {
	s.TotalValue = Total(s.Items)
	s.TotalPaid = TotalPaid(s.Payments)
	s.Status = DeriveStatus(s.TotalValue, s.TotalPaid)
}

// Shortfall is TotalValue − TotalPaid; negative when overpaid
func (s *Sale) Shortfall() decimal.Decimal {
	return Total(s.Items).Sub(TotalPaid(s.Payments))
}

// OutstandingShortfall is the shortfall clamped at zero
func (s *Sale) OutstandingShortfall() decimal.Decimal {
	sf := s.Shortfall()
	if sf.IsNegative() {
		return decimal.Zero
	}
	return sf
}

// ApplyCredit records how much client credit covers the shortfall
func (s *Sale) ApplyCredit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_CREDIT", "Applied credit cannot be negative")
	}
	if amount.GreaterThan(s.OutstandingShortfall()) {
		return shared.NewValidationError("INVALID_CREDIT", "Applied credit cannot exceed the sale shortfall")
	}
	s.CreditApplied = amount
	return nil
}

// IsCompleted reports whether the sale is fully paid
func (s *Sale) IsCompleted() bool {
	return DeriveStatus(Total(s.Items), TotalPaid(s.Payments)) == StatusCompleted
}

// Quantities returns the total quantity per product
func (s *Sale) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(s.Items))
	for _, li := range s.Items {
		q[li.ProductID] += li.Quantity
	}
	return q
}
