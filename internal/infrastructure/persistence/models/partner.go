package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client domain entity.
// Contacts and address are stored as JSON documents.
type ClientModel struct {
	AggregateModel
	Name       string            `gorm:"type:varchar(200);not null"`
	SearchName string            `gorm:"type:varchar(200);not null;index"`
	Contacts   []partner.Contact `gorm:"type:text;serializer:json"`
	Address    *partner.Address  `gorm:"type:text;serializer:json"`
	Balance    decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Contacts:          append([]partner.Contact(nil), m.Contacts...),
		Address:           m.Address,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.SearchName = FoldName(c.Name)
	m.Contacts = c.Contacts
	if m.Contacts == nil {
		m.Contacts = []partner.Contact{}
	}
	m.Address = c.Address
	m.Balance = c.Balance
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// BalanceEntryModel is the persistence model for the append-only client balance history.
type BalanceEntryModel struct {
	ID            uuid.UUID                `gorm:"type:uuid;primary_key"`
	CreatedAt     time.Time                `gorm:"not null;index"`
	ClientID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	SaleID        *uuid.UUID               `gorm:"type:uuid;index"`
	Kind          partner.BalanceEntryKind `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceBefore decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceAfter  decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	OperatorID    *uuid.UUID               `gorm:"type:uuid"`
	Note          string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BalanceEntryModel) TableName() string {
	return "balance_entries"
}

// ToDomain converts the persistence model to a domain BalanceEntry.
func (m *BalanceEntryModel) ToDomain() *partner.BalanceEntry {
	return &partner.BalanceEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		ClientID:      m.ClientID,
		SaleID:        m.SaleID,
		Kind:          m.Kind,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		OperatorID:    m.OperatorID,
		Note:          m.Note,
	}
}

// BalanceEntryModelFromDomain creates a new persistence model from a domain BalanceEntry.
func BalanceEntryModelFromDomain(e *partner.BalanceEntry) *BalanceEntryModel {
	return &BalanceEntryModel{
		ID:            e.ID,
		CreatedAt:     e.CreatedAt,
		ClientID:      e.ClientID,
		SaleID:        e.SaleID,
		Kind:          e.Kind,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		OperatorID:    e.OperatorID,
		Note:          e.Note,
	}
}
