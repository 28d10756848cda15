package sale

import (
	"context"

	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
)

// TransactionScope provides transactional access to the ledger repositories.
// Everything done through the repositories handed to fn is committed together
// when fn returns nil and rolled back when it returns an error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories a ledger operation touches.
// All of them share the same underlying transaction.
type TransactionalRepositories interface {
	SaleRepo() sale.Repository
	ProductRepo() catalog.ProductRepository
	ClientRepo() partner.ClientRepository
	BalanceEntryRepo() partner.BalanceEntryRepository
}
