package shared

import "github.com/shopspring/decimal"

// MoneyPlaces is the scale of every stored amount (DECIMAL(18,2)).
const MoneyPlaces = 2

// IsMoney reports whether d fits the stored scale without rounding.
// Trailing zeros are fine: 1.500 is money, 1.505 is not.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}
