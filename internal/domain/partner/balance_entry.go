package partner

import (
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceEntryKind classifies a client balance movement
type BalanceEntryKind string

const (
	// BalanceEntrySaleCharge is the unpaid part of a sale added as debt
	BalanceEntrySaleCharge BalanceEntryKind = "SALE_CHARGE"
	// BalanceEntryCreditConsumed is client credit spent on a sale's shortfall
	BalanceEntryCreditConsumed BalanceEntryKind = "CREDIT_CONSUMED"
	// BalanceEntrySaleReversal undoes a SALE_CHARGE when a sale is edited or deleted
	BalanceEntrySaleReversal BalanceEntryKind = "SALE_REVERSAL"
	// BalanceEntryCreditRestored undoes a CREDIT_CONSUMED
	BalanceEntryCreditRestored BalanceEntryKind = "CREDIT_RESTORED"
)

// IsValid returns true if the kind is known
func (k BalanceEntryKind) IsValid() bool {
	switch k {
	case BalanceEntrySaleCharge, BalanceEntryCreditConsumed, BalanceEntrySaleReversal, BalanceEntryCreditRestored:
		return true
	}
	return false
}

// BalanceEntry is an immutable record of one client balance change.
// Amount is signed: positive increases what the client owes.
type BalanceEntry struct {
	shared.BaseEntity
	ClientID      uuid.UUID
	SaleID        *uuid.UUID
	Kind          BalanceEntryKind
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	OperatorID    *uuid.UUID
	Note          string
}

// NewBalanceEntry creates a ledger entry. BalanceAfter must equal BalanceBefore+Amount.
func NewBalanceEntry(clientID uuid.UUID, kind BalanceEntryKind, amount, before, after decimal.Decimal) (*BalanceEntry, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_ENTRY_KIND", "Invalid balance entry kind")
	}
	if amount.IsZero() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Balance entry amount cannot be zero")
	}
	if !before.Add(amount).Equal(after) {
		return nil, shared.NewValidationError("INVALID_BALANCE", "Balance after does not match before plus amount")
	}
	base := shared.NewBaseEntity()
	// v7 ids sort by creation, keeping entries written in the same instant in order
	base.ID = uuid.Must(uuid.NewV7())
	return &BalanceEntry{
		BaseEntity:    base,
		ClientID:      clientID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	}, nil
}

// WithSaleID links the entry to the sale that caused it
func (e *BalanceEntry) WithSaleID(saleID uuid.UUID) *BalanceEntry {
	e.SaleID = &saleID
	return e
}

// WithOperatorID records the session user that performed the change
func (e *BalanceEntry) WithOperatorID(operatorID uuid.UUID) *BalanceEntry {
	if operatorID != uuid.Nil {
		e.OperatorID = &operatorID
	}
	return e
}

// WithNote sets a free text note
func (e *BalanceEntry) WithNote(note string) *BalanceEntry {
	e.Note = note
	return e
}
