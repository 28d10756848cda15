package models

import (
	"sort"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate.
// TotalValue, TotalPaid and Status are read-side copies recomputed on every save.
type SaleModel struct {
	AggregateModel
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	ClientName    string             `gorm:"type:varchar(200);not null"`
	Kind          sale.Kind          `gorm:"type:varchar(20);not null;default:'CASH_SALE'"`
	TotalValue    decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	TotalPaid     decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Status        sale.Status        `gorm:"type:varchar(20);not null;index"`
	CreditApplied decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Notes         string             `gorm:"type:text"`
	CreatedBy     *uuid.UUID         `gorm:"type:uuid"`
	Items         []SaleItemModel    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments      []SalePaymentModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line item row. Position keeps the cart order.
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// SalePaymentModel is one payment row. ID is the payment id.
type SalePaymentModel struct {
	ID       uuid.UUID          `gorm:"type:uuid;primary_key"`
	SaleID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Position int                `gorm:"not null"`
	Method   sale.PaymentMethod `gorm:"type:varchar(10);not null"`
	Amount   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SalePaymentModel) TableName() string {
	return "sale_payments"
}

// ToDomain converts the persistence model to a domain Sale. Derived fields are
// recomputed from the loaded items and payments.
func (m *SaleModel) ToDomain() *sale.Sale {
	items := append([]SaleItemModel(nil), m.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	payments := append([]SalePaymentModel(nil), m.Payments...)
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].Position < payments[j].Position })

	s := &sale.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		Kind:              m.Kind,
		Items:             make([]sale.LineItem, len(items)),
		Payments:          make([]sale.Payment, len(payments)),
		CreditApplied:     m.CreditApplied,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
	for i, it := range items {
		s.Items[i] = sale.LineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	for i, p := range payments {
		s.Payments[i] = sale.Payment{ID: p.ID, Method: p.Method, Amount: p.Amount}
	}
	s.Recalculate()
	return s
}

// FromDomain populates the persistence model from a domain Sale, including child rows.
func (m *SaleModel) FromDomain(s *sale.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ClientID = s.ClientID
	m.ClientName = s.ClientName
	m.Kind = s.Kind
	m.TotalValue = sale.Total(s.Items)
	m.TotalPaid = sale.TotalPaid(s.Payments)
	m.Status = sale.DeriveStatus(m.TotalValue, m.TotalPaid)
	m.CreditApplied = s.CreditApplied
	m.Notes = s.Notes
	m.CreatedBy = s.CreatedBy

	m.Items = make([]SaleItemModel, len(s.Items))
	for i, li := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:          uuid.New(),
			SaleID:      s.ID,
			Position:    i,
			ProductID:   li.ProductID,
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
		}
	}
	m.Payments = make([]SalePaymentModel, len(s.Payments))
	for i, p := range s.Payments {
		m.Payments[i] = SalePaymentModel{
			ID:       p.ID,
			SaleID:   s.ID,
			Position: i,
			Method:   p.Method,
			Amount:   p.Amount,
		}
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *sale.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
