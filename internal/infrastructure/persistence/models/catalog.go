package models

import (
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	SearchName    string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		SalePrice:         m.SalePrice,
		StockQuantity:     m.StockQuantity,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.SearchName = FoldName(p.Name)
	m.Description = p.Description
	m.SalePrice = p.SalePrice
	m.StockQuantity = p.StockQuantity
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
