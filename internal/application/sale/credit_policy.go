package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditQuote is what a CreditPolicy is asked to decide on: the client holds
// Available credit and the sale leaves Shortfall unpaid. At most Consumable,
// min(Available, Shortfall), can be spent.
type CreditQuote struct {
	ClientID   uuid.UUID
	SaleID     uuid.UUID
	Available  decimal.Decimal
	Shortfall  decimal.Decimal
	Consumable decimal.Decimal
}

// CreditPolicy decides how much client credit a sale consumes. It is only
// consulted when the sale is underpaid and the client holds credit. Results
// outside [0, Consumable] are clamped.
type CreditPolicy interface {
	Decide(ctx context.Context, quote CreditQuote) (decimal.Decimal, error)
}

// CreditPolicyFunc adapts a function to CreditPolicy
type CreditPolicyFunc func(ctx context.Context, quote CreditQuote) (decimal.Decimal, error)

// Decide implements CreditPolicy
func (f CreditPolicyFunc) Decide(ctx context.Context, quote CreditQuote) (decimal.Decimal, error) {
	return f(ctx, quote)
}

// DeclineCredit never consumes credit
var DeclineCredit CreditPolicy = CreditPolicyFunc(func(context.Context, CreditQuote) (decimal.Decimal, error) {
	return decimal.Zero, nil
})

// AcceptCredit consumes as much credit as possible
var AcceptCredit CreditPolicy = CreditPolicyFunc(func(_ context.Context, q CreditQuote) (decimal.Decimal, error) {
	return q.Consumable, nil
})

// CreditUpTo consumes at most limit
func CreditUpTo(limit decimal.Decimal) CreditPolicy {
	return CreditPolicyFunc(func(_ context.Context, q CreditQuote) (decimal.Decimal, error) {
		return decimal.Min(limit, q.Consumable), nil
	})
}

// CreditPolicyByName maps a configuration value to a policy
func CreditPolicyByName(name string) (CreditPolicy, bool) {
	switch name {
	case "", "decline":
		return DeclineCredit, true
	case "accept":
		return AcceptCredit, true
	}
	return nil, false
}

func clampCredit(amount, consumable decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, consumable)
}
