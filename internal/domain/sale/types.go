package sale

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodPix    PaymentMethod = "PIX"
	PaymentMethodDebit  PaymentMethod = "DEBIT"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

// AllPaymentMethods lists the accepted payment methods
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodPix,
	PaymentMethodDebit,
	PaymentMethodCredit,
}

// IsValid returns true if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodDebit, PaymentMethodCredit:
		return true
	}
	return false
}

// ParsePaymentMethod parses a method name case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.IsValid()
}

// Status is derived from the sale totals. It is never set directly.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Kind is the commercial form of the sale
type Kind string

const (
	KindCashSale    Kind = "CASH_SALE"
	KindInstallment Kind = "INSTALLMENT"
)

// IsValid returns true if the kind is known
func (k Kind) IsValid() bool {
	return k == KindCashSale || k == KindInstallment
}

// LineItem is one product entry of a sale. UnitPrice and ProductName are
// snapshots taken when the product was added.
type LineItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns UnitPrice × Quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Payment is one partial payment toward a sale
type Payment struct {
	ID     uuid.UUID
	Method PaymentMethod
	Amount decimal.Decimal
}

// PricedProduct is the product data a line item snapshots
type PricedProduct struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

// ClientRef identifies the client of a sale together with the name snapshot
type ClientRef struct {
	ID   uuid.UUID
	Name string
}
