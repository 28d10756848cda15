package sale

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Validation error codes raised by line item operations
const (
	CodeSaleCapExceeded = "SALE_CAP_EXCEEDED"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeEmptySale       = "EMPTY_SALE"
	CodeInvalidPrice    = "INVALID_PRICE"
)

// DefaultSaleCap is the maximum total of a single sale unless configured otherwise
var DefaultSaleCap = decimal.NewFromInt(1200)

// Total sums UnitPrice × Quantity over items. It is always computed from the
// items and never stored as independent state.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// AddLineItem adds one unit of product. An existing entry for the product has
// its quantity incremented; otherwise a new entry with quantity 1 and the
// product's current price is appended. The input slice is never modified; on
// rejection it is returned as-is together with the error.
func AddLineItem(items []LineItem, product PricedProduct, limit decimal.Decimal) ([]LineItem, error) {
	if product.Price.IsNegative() || !shared.IsMoney(product.Price) {
		return items, shared.NewValidationError(CodeInvalidPrice, "Product price must be a non-negative amount in cents")
	}

	next := cloneItems(items)
	if idx := indexOf(next, product.ID); idx >= 0 {
		next[idx].Quantity++
	} else {
		next = append(next, LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    1,
			UnitPrice:   product.Price,
		})
	}

	if err := checkCap(Total(next), limit); err != nil {
		return items, err
	}
	return next, nil
}

// RemoveLineItem removes the entry for productID. Removing an absent product is a no-op.
func RemoveLineItem(items []LineItem, productID uuid.UUID) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, li := range items {
		if li.ProductID != productID {
			next = append(next, li)
		}
	}
	return next
}

// SetQuantity sets the quantity of an existing entry. The cap is checked
// against the total of the other items plus the new contribution.
func SetQuantity(items []LineItem, productID uuid.UUID, quantity int, limit decimal.Decimal) ([]LineItem, error) {
	if quantity <= 0 {
		return items, shared.NewValidationError(CodeInvalidQuantity, "Quantity must be greater than zero")
	}
	idx := indexOf(items, productID)
	if idx < 0 {
		return items, shared.NewNotFoundError("line item", productID.String())
	}

	others := Total(RemoveLineItem(items, productID))
	prospective := others.Add(items[idx].UnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	if err := checkCap(prospective, limit); err != nil {
		return items, err
	}

	next := cloneItems(items)
	next[idx].Quantity = quantity
	return next, nil
}

// ValidateLineItems checks a complete item list as submitted by a caller
func ValidateLineItems(items []LineItem, limit decimal.Decimal) error {
	if len(items) == 0 {
		return shared.NewValidationError(CodeEmptySale, "A sale must have at least one line item")
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, li := range items {
		if li.Quantity <= 0 {
			return shared.NewValidationError(CodeInvalidQuantity,
				fmt.Sprintf("Quantity for %s must be greater than zero", li.ProductName))
		}
		if li.UnitPrice.IsNegative() || !shared.IsMoney(li.UnitPrice) {
			return shared.NewValidationError(CodeInvalidPrice,
				fmt.Sprintf("Unit price for %s must be a non-negative amount in cents", li.ProductName))
		}
		if _, dup := seen[li.ProductID]; dup {
			return shared.NewValidationError(shared.CodeValidation,
				fmt.Sprintf("Product %s appears more than once", li.ProductID))
		}
		seen[li.ProductID] = struct{}{}
	}
	return checkCap(Total(items), limit)
}

// checkCap rejects totals above cap. A non-positive limit disables the check.
func checkCap(total, limit decimal.Decimal) error {
	if limit.IsPositive() && total.GreaterThan(limit) {
		return shared.NewValidationError(CodeSaleCapExceeded,
			fmt.Sprintf("Sale total %s exceeds the limit of %s", total.StringFixed(2), limit.StringFixed(2)))
	}
	return nil
}

// QuantityOf returns the quantity recorded for productID, zero when absent.
func QuantityOf(items []LineItem, productID uuid.UUID) int {
	if idx := indexOf(items, productID); idx >= 0 {
		return items[idx].Quantity
	}
	return 0
}

func indexOf(items []LineItem, productID uuid.UUID) int {
	for i, li := range items {
		if li.ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	next := make([]LineItem, len(items), len(items)+1)
	copy(next, items)
	return next
}
