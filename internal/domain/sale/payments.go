package sale

import (
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	CodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	CodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
)

// AddPayment appends a payment with a fresh id
func AddPayment(payments []Payment, method PaymentMethod, amount decimal.Decimal) ([]Payment, Payment, error) {
	p := Payment{ID: uuid.New(), Method: method, Amount: amount}
	if err := validatePayment(p); err != nil {
		return payments, Payment{}, err
	}
	next := make([]Payment, len(payments), len(payments)+1)
	copy(next, payments)
	return append(next, p), p, nil
}

// RemovePayment removes the payment with the given id
func RemovePayment(payments []Payment, id uuid.UUID) []Payment {
	next := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.ID != id {
			next = append(next, p)
		}
	}
	return next
}

// TotalPaid sums the payment amounts
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ValidatePayments checks a complete payment list as submitted by a caller.
// Payments without an id are given one.
func ValidatePayments(payments []Payment) ([]Payment, error) {
	next := make([]Payment, len(payments))
	seen := make(map[uuid.UUID]struct{}, len(payments))
	for i, p := range payments {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if _, dup := seen[p.ID]; dup {
			return nil, shared.NewValidationError(shared.CodeValidation, "Duplicate payment id "+p.ID.String())
		}
		seen[p.ID] = struct{}{}
		if err := validatePayment(p); err != nil {
			return nil, err
		}
		next[i] = p
	}
	return next, nil
}

func validatePayment(p Payment) error {
	if !p.Method.IsValid() {
		return shared.NewValidationError(CodeInvalidPaymentMethod, "Unknown payment method: "+string(p.Method))
	}
	if !p.Amount.IsPositive() {
		return shared.NewValidationError(CodeInvalidPaymentAmount, "Payment amount must be greater than zero")
	}
	if !shared.IsMoney(p.Amount) {
		return shared.NewValidationError(CodeInvalidPaymentAmount, "Payment amount cannot have fractions of a cent")
	}
	return nil
}
