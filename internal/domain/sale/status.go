package sale

import "github.com/shopspring/decimal"

// DeriveStatus is COMPLETED iff totalPaid ≥ totalValue, PENDING otherwise
func DeriveStatus(totalValue, totalPaid decimal.Decimal) Status {
	if totalPaid.GreaterThanOrEqual(totalValue) {
		return StatusCompleted
	}
	return StatusPending
}
