package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItemInput is one requested line item. The unit price is never taken from
// the caller: new products are priced from the catalog, products already on
// an edited sale keep their snapshot.
type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// PaymentInput is one requested payment. ID is kept when editing an existing payment.
type PaymentInput struct {
	ID     *uuid.UUID      `json:"id,omitempty"`
	Method string          `json:"method" binding:"required,payment_method"`
	Amount decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

// CreditChoice overrides the service's default credit policy for one call.
// UseClientCredit nil means "use the default"; CreditAmount caps what is consumed.
type CreditChoice struct {
	UseClientCredit *bool            `json:"use_client_credit,omitempty"`
	CreditAmount    *decimal.Decimal `json:"credit_amount,omitempty" binding:"omitempty,decimal_gte0"`
}

// CodeInvalidCreditAmount rejects a credit cap that is negative or finer than a cent.
const CodeInvalidCreditAmount = "INVALID_CREDIT_AMOUNT"

func (c CreditChoice) validate() error {
	if c.CreditAmount == nil {
		return nil
	}
	if c.CreditAmount.IsNegative() || !shared.IsMoney(*c.CreditAmount) {
		return shared.NewValidationError(CodeInvalidCreditAmount, "Credit amount must be a non-negative amount in cents")
	}
	return nil
}

// CreateSaleRequest is the input of LedgerService.Create
type CreateSaleRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Kind     string          `json:"kind"`
	Items    []LineItemInput `json:"items" binding:"omitempty,dive"`
	Payments []PaymentInput  `json:"payments" binding:"omitempty,dive"`
	Notes    string          `json:"notes" binding:"max=1000"`
	CreditChoice
}

// UpdateSaleRequest is the input of LedgerService.Update. It carries the
// complete new state of the sale.
type UpdateSaleRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Kind     string          `json:"kind"`
	Items    []LineItemInput `json:"items" binding:"omitempty,dive"`
	Payments []PaymentInput  `json:"payments" binding:"omitempty,dive"`
	Notes    string          `json:"notes" binding:"max=1000"`
	CreditChoice
}

// QuoteRequest previews a sale without saving it. SaleID is set when the
// preview is for an edit of an existing sale.
type QuoteRequest struct {
	SaleID   *uuid.UUID      `json:"sale_id,omitempty"`
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Items    []LineItemInput `json:"items" binding:"omitempty,dive"`
	Payments []PaymentInput  `json:"payments" binding:"omitempty,dive"`
}

// SaleListFilter narrows LedgerService.List
type SaleListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	ClientID *uuid.UUID
	Status   string
	From     *time.Time
	To       *time.Time
}

// LineItemResponse is a line item in API responses
type LineItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PaymentResponse is a payment in API responses
type PaymentResponse struct {
	ID     uuid.UUID       `json:"id"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// SaleResponse is a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	ClientID      uuid.UUID          `json:"client_id"`
	ClientName    string             `json:"client_name"`
	Kind          string             `json:"kind"`
	Items         []LineItemResponse `json:"items"`
	Payments      []PaymentResponse  `json:"payments"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	TotalPaid     decimal.Decimal    `json:"total_paid"`
	Shortfall     decimal.Decimal    `json:"shortfall"`
	CreditApplied decimal.Decimal    `json:"credit_applied"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID         `json:"created_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// LedgerResult is returned by the mutating ledger operations
type LedgerResult struct {
	Sale            *SaleResponse   `json:"sale,omitempty"`
	ClientBalance   decimal.Decimal `json:"client_balance"`
	SkippedProducts []uuid.UUID     `json:"skipped_products,omitempty"`
}

// QuoteResponse previews totals and the client balance after the sale
type QuoteResponse struct {
	TotalValue       decimal.Decimal    `json:"total_value"`
	TotalPaid        decimal.Decimal    `json:"total_paid"`
	Shortfall        decimal.Decimal    `json:"shortfall"`
	Status           string             `json:"status"`
	WithinCap        bool               `json:"within_cap"`
	SaleCap          decimal.Decimal    `json:"sale_cap"`
	ClientBalance    decimal.Decimal    `json:"client_balance"`
	AvailableCredit  decimal.Decimal    `json:"available_credit"`
	ConsumableCredit decimal.Decimal    `json:"consumable_credit"`
	ProjectedBalance decimal.Decimal    `json:"projected_balance"`
	Items            []LineItemResponse `json:"items"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *sale.Sale) SaleResponse {
	items := make([]LineItemResponse, len(s.Items))
	for i, li := range s.Items {
		items[i] = toLineItemResponse(li)
	}
	payments := make([]PaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = PaymentResponse{ID: p.ID, Method: string(p.Method), Amount: p.Amount}
	}
	return SaleResponse{
		ID:            s.ID,
		ClientID:      s.ClientID,
		ClientName:    s.ClientName,
		Kind:          string(s.Kind),
		Items:         items,
		Payments:      payments,
		TotalValue:    s.TotalValue,
		TotalPaid:     s.TotalPaid,
		Shortfall:     s.Shortfall(),
		CreditApplied: s.CreditApplied,
		Status:        string(s.Status),
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
}

func toLineItemResponse(li sale.LineItem) LineItemResponse {
	return LineItemResponse{
		ProductID:   li.ProductID,
		ProductName: li.ProductName,
		Quantity:    li.Quantity,
		UnitPrice:   li.UnitPrice,
		Subtotal:    li.Subtotal(),
	}
}
