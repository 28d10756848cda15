package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sale.Repository using GORM.
// Items and payments are child rows written and loaded with the sale.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a sale with its items and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var model models.SaleModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "load sale")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a sale with a row lock held until the transaction ends
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var model models.SaleModel
	if err := r.withChildren(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "lock sale")
	}
	return model.ToDomain(), nil
}

// FindAll lists sales matching the filter, newest first by default
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sale.Filter) ([]sale.Sale, error) {
	query := r.applyFilter(r.withChildren(ctx).Model(&models.SaleModel{}), filter).
		Order(saleSort.order(filter.OrderBy, filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var saleModels []models.SaleModel
	if err := query.Find(&saleModels).Error; err != nil {
		return nil, translateError(err, "list sales")
	}

	sales := make([]sale.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = *saleModels[i].ToDomain()
	}
	return sales, nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter sale.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, translateError(err, "count sales")
	}
	return count, nil
}

// ExistsForClient reports whether any sale references the client
func (r *GormSaleRepository) ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("client_id = ?", clientID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, translateError(err, "check client sales")
	}
	return count > 0, nil
}

// Create inserts the sale with its items and payments
func (r *GormSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	model := models.SaleModelFromDomain(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "create sale")
	}
	return nil
}

// Update rewrites the sale header if its version is unchanged, then replaces
// the item and payment rows.
func (r *GormSaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	model := models.SaleModelFromDomain(s)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.SaleModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]any{
			"client_id":      model.ClientID,
			"client_name":    model.ClientName,
			"kind":           model.Kind,
			"total_value":    model.TotalValue,
			"total_paid":     model.TotalPaid,
			"status":         model.Status,
			"credit_applied": model.CreditApplied,
			"notes":          model.Notes,
			"updated_at":     s.UpdatedAt,
			"version":        s.Version + 1,
		})
	if result.Error != nil {
		return translateError(result.Error, "update sale")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if err := r.deleteChildren(db, s.ID); err != nil {
		return err
	}
	if len(model.Items) > 0 {
		if err := db.Create(&model.Items).Error; err != nil {
			return translateError(err, "write sale items")
		}
	}
	if len(model.Payments) > 0 {
		if err := db.Create(&model.Payments).Error; err != nil {
			return translateError(err, "write sale payments")
		}
	}
	s.Version++
	return nil
}

// Delete removes the sale and its child rows
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteChildren(db, id); err != nil {
		return err
	}
	result := db.Delete(&models.SaleModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "delete sale")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSaleRepository) deleteChildren(db *gorm.DB, saleID uuid.UUID) error {
	if err := db.Delete(&models.SaleItemModel{}, "sale_id = ?", saleID).Error; err != nil {
		return translateError(err, "delete sale items")
	}
	if err := db.Delete(&models.SalePaymentModel{}, "sale_id = ?", saleID).Error; err != nil {
		return translateError(err, "delete sale payments")
	}
	return nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sale.Filter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(client_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(filter.Search))+"%")
	}
	return query
}

// Ensure GormSaleRepository implements sale.Repository
var _ sale.Repository = (*GormSaleRepository)(nil)
