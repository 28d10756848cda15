package persistence

import (
	"context"

	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"gorm.io/gorm"
)

// GormTransactionScope implements saleapp.TransactionScope using GORM transactions.
// A returned error rolls back every write made through the scoped repositories.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos saleapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) SaleRepo() sale.Repository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) ClientRepo() partner.ClientRepository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) BalanceEntryRepo() partner.BalanceEntryRepository {
	return NewGormBalanceEntryRepository(r.tx)
}

// Ensure GormTransactionScope implements saleapp.TransactionScope
var _ saleapp.TransactionScope = (*GormTransactionScope)(nil)
