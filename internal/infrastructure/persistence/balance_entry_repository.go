package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBalanceEntryRepository implements partner.BalanceEntryRepository using GORM.
// Entries are append-only.
type GormBalanceEntryRepository struct {
	db *gorm.DB
}

// NewGormBalanceEntryRepository creates a new GormBalanceEntryRepository
func NewGormBalanceEntryRepository(db *gorm.DB) *GormBalanceEntryRepository {
	return &GormBalanceEntryRepository{db: db}
}

// Create appends an entry
func (r *GormBalanceEntryRepository) Create(ctx context.Context, entry *partner.BalanceEntry) error {
	return translateError(r.db.WithContext(ctx).Create(models.BalanceEntryModelFromDomain(entry)).Error, "create balance entry")
}

// FindByClient returns a client's entries newest first with the total count
func (r *GormBalanceEntryRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]partner.BalanceEntry, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.BalanceEntryModel{}).Where("client_id = ?", clientID)
	if kind, ok := filter.Filters["kind"].(string); ok && kind != "" {
		base = base.Where("kind = ?", kind)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count balance entries")
	}

	query := base.Order("created_at DESC, id DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var entryModels []models.BalanceEntryModel
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, 0, translateError(err, "list balance entries")
	}
	return toBalanceEntries(entryModels), total, nil
}

// FindBySale returns all entries caused by a sale, oldest first
func (r *GormBalanceEntryRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]partner.BalanceEntry, error) {
	var entryModels []models.BalanceEntryModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC, id ASC").
		Find(&entryModels).Error; err != nil {
		return nil, translateError(err, "list sale balance entries")
	}
	return toBalanceEntries(entryModels), nil
}

func toBalanceEntries(entryModels []models.BalanceEntryModel) []partner.BalanceEntry {
	entries := make([]partner.BalanceEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormBalanceEntryRepository implements partner.BalanceEntryRepository
var _ partner.BalanceEntryRepository = (*GormBalanceEntryRepository)(nil)
