package models

import (
	"time"

	"github.com/saleledger/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName  string     `gorm:"type:varchar(200)"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Active       bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.PasswordHash = u.PasswordHash
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// AllModels lists every model in dependency order, used by AutoMigrate for SQLite
func AllModels() []any {
	return []any{
		&UserModel{},
		&ProductModel{},
		&ClientModel{},
		&SaleModel{},
		&SaleItemModel{},
		&SalePaymentModel{},
		&BalanceEntryModel{},
	}
}
