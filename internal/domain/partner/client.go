package partner

import (
	"strings"
	"time"

	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContactKind is the channel of a client contact
type ContactKind string

const (
	ContactKindPhone    ContactKind = "phone"
	ContactKindWhatsApp ContactKind = "whatsapp"
	ContactKindEmail    ContactKind = "email"
	ContactKindOther    ContactKind = "other"
)

// IsValid returns true if the contact kind is known
func (k ContactKind) IsValid() bool {
	switch k {
	case ContactKindPhone, ContactKindWhatsApp, ContactKindEmail, ContactKindOther:
		return true
	}
	return false
}

// Contact is one way to reach a client
type Contact struct {
	Kind  ContactKind `json:"kind"`
	Value string      `json:"value"`
}

// Address is the optional postal address of a client
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Client is a customer with a running balance.
//
// Balance sign: positive means the client owes the business, negative means
// the client holds credit with the business.
type Client struct {
	shared.BaseAggregateRoot
	Name     string
	Contacts []Contact
	Address  *Address
	Balance  decimal.Decimal
}

// NewClient creates a new client with a zero balance
func NewClient(name string, contacts []Contact, address *Address) (*Client, error) {
	name = strings.TrimSpace(name)
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if err := validateContacts(contacts); err != nil {
		return nil, err
	}

	c := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Contacts:          append([]Contact(nil), contacts...),
		Address:           address,
		Balance:           decimal.Zero,
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// UpdateProfile replaces name, contacts and address
func (c *Client) UpdateProfile(name string, contacts []Contact, address *Address) error {
	name = strings.TrimSpace(name)
	if err := validateClientName(name); err != nil {
		return err
	}
	if err := validateContacts(contacts); err != nil {
		return err
	}
	c.Name = name
	c.Contacts = append([]Contact(nil), contacts...)
	c.Address = address
	c.UpdatedAt = time.Now()
	return nil
}

// ApplyBalanceDelta adds delta to the balance and returns the balance before and after.
// A positive delta increases what the client owes.
func (c *Client) ApplyBalanceDelta(delta decimal.Decimal) (before, after decimal.Decimal) {
	before = c.Balance
	c.Balance = c.Balance.Add(delta)
	c.UpdatedAt = time.Now()
	return before, c.Balance
}

// AvailableCredit is the credit the client can spend, zero when the client owes money
func (c *Client) AvailableCredit() decimal.Decimal {
	if c.Balance.IsNegative() {
		return c.Balance.Neg()
	}
	return decimal.Zero
}

// HasCredit reports whether the client holds credit
func (c *Client) HasCredit() bool {
	return c.Balance.IsNegative()
}

// Owes reports whether the client has outstanding debt
func (c *Client) Owes() bool {
	return c.Balance.IsPositive()
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateContacts(contacts []Contact) error {
	for _, ct := range contacts {
		if !ct.Kind.IsValid() {
			return shared.NewValidationError("INVALID_CONTACT", "Unknown contact kind: "+string(ct.Kind))
		}
		if strings.TrimSpace(ct.Value) == "" {
			return shared.NewValidationError("INVALID_CONTACT", "Contact value cannot be empty")
		}
	}
	return nil
}
