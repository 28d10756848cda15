package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "load client")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a client with a row lock held until the transaction ends
func (r *GormClientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "lock client")
	}
	return model.ToDomain(), nil
}

// FindAll finds all clients matching the filter
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, error) {
	var clientModels []models.ClientModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}), filter).
		Order(clientSort.order(filter.OrderBy, filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, translateError(err, "list clients")
	}

	clients := make([]partner.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, translateError(err, "count clients")
	}
	return count, nil
}

// Create inserts a new client
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	return translateError(r.db.WithContext(ctx).Create(models.ClientModelFromDomain(client)).Error, "create client")
}

// Update writes the client if its version is unchanged and advances the version
func (r *GormClientRepository) Update(ctx context.Context, client *partner.Client) error {
	model := models.ClientModelFromDomain(client)
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ? AND version = ?", client.ID, client.Version).
		Select("name", "search_name", "contacts", "address", "balance", "updated_at", "version").
		Updates(&models.ClientModel{
			AggregateModel: models.AggregateModel{
				UpdatedAt: client.UpdatedAt,
				Version:   client.Version + 1,
			},
			Name:       model.Name,
			SearchName: model.SearchName,
			Contacts:   model.Contacts,
			Address:    model.Address,
			Balance:    model.Balance,
		})
	if result.Error != nil {
		return translateError(result.Error, "update client")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	client.Version++
	return nil
}

// Delete deletes a client and its balance history
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.BalanceEntryModel{}, "client_id = ?", id).Error; err != nil {
		return translateError(err, "delete client balance entries")
	}
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "delete client")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("search_name LIKE ?", searchPattern(filter.Search))
	}
	if v, ok := filter.Filters["has_balance"].(bool); ok {
		if v {
			query = query.Where("balance <> 0")
		} else {
			query = query.Where("balance = 0")
		}
	}
	return query
}

// Ensure GormClientRepository implements partner.ClientRepository
var _ partner.ClientRepository = (*GormClientRepository)(nil)
