package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ContactInput is one contact in a client request
type ContactInput struct {
	Kind  string `json:"kind" binding:"required,oneof=phone whatsapp email other"`
	Value string `json:"value" binding:"required,max=200"`
}

// AddressInput is the optional postal address in a client request
type AddressInput struct {
	Street     string `json:"street" binding:"max=200"`
	Number     string `json:"number" binding:"max=20"`
	District   string `json:"district" binding:"max=100"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=50"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=200"`
	Contacts []ContactInput `json:"contacts" binding:"omitempty,dive"`
	Address  *AddressInput  `json:"address"`
}

// UpdateClientRequest replaces the client profile. The balance is not editable.
type UpdateClientRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=200"`
	Contacts []ContactInput `json:"contacts" binding:"omitempty,dive"`
	Address  *AddressInput  `json:"address"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Contacts        []partner.Contact `json:"contacts"`
	Address         *partner.Address  `json:"address,omitempty"`
	Balance         decimal.Decimal   `json:"balance"`
	AvailableCredit decimal.Decimal   `json:"available_credit"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// ClientListFilter represents filter options for client list
type ClientListFilter struct {
	Search     string `form:"search"`
	HasBalance *bool  `form:"has_balance"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BalanceEntryFilter narrows a client's balance history
type BalanceEntryFilter struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=SALE_CHARGE CREDIT_CONSUMED SALE_REVERSAL CREDIT_RESTORED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BalanceEntryResponse is one balance history row
type BalanceEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	SaleID        *uuid.UUID      `json:"sale_id,omitempty"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OperatorID    *uuid.UUID      `json:"operator_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (in ContactInput) toDomain() partner.Contact {
	return partner.Contact{Kind: partner.ContactKind(in.Kind), Value: in.Value}
}

func toContacts(inputs []ContactInput) []partner.Contact {
	contacts := make([]partner.Contact, len(inputs))
	for i, in := range inputs {
		contacts[i] = in.toDomain()
	}
	return contacts
}

func toAddress(in *AddressInput) *partner.Address {
	if in == nil {
		return nil
	}
	return &partner.Address{
		Street:     in.Street,
		Number:     in.Number,
		District:   in.District,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
	}
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *partner.Client) ClientResponse {
	contacts := c.Contacts
	if contacts == nil {
		contacts = []partner.Contact{}
	}
	return ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Contacts:        contacts,
		Address:         c.Address,
		Balance:         c.Balance,
		AvailableCredit: c.AvailableCredit(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToBalanceEntryResponse converts a domain BalanceEntry
func ToBalanceEntryResponse(e *partner.BalanceEntry) BalanceEntryResponse {
	return BalanceEntryResponse{
		ID:            e.ID,
		ClientID:      e.ClientID,
		SaleID:        e.SaleID,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		OperatorID:    e.OperatorID,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
	}
}
