package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/domain/shared"
)

// GormCloseoutRepository implements closeout.Repository using GORM
type GormCloseoutRepository struct {
	db *gorm.DB
}

// NewGormCloseoutRepository creates a new GormCloseoutRepository
func NewGormCloseoutRepository(db *gorm.DB) *GormCloseoutRepository {
	return &GormCloseoutRepository{db: db}
}

// FindByModelAndSku finds a record by the sync-path uniqueness key
func (r *GormCloseoutRepository) FindByModelAndSku(ctx context.Context, modelNumber, acumaticaSku string) (*closeout.Record, error) {
	var record closeout.Record
	if err := r.db.WithContext(ctx).
		Where("model_number = ? AND acumatica_sku = ?", modelNumber, acumaticaSku).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindBySku finds a record by SKU alone
func (r *GormCloseoutRepository) FindBySku(ctx context.Context, acumaticaSku string) (*closeout.Record, error) {
	var record closeout.Record
	if err := r.db.WithContext(ctx).
		Where("acumatica_sku = ?", acumaticaSku).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindPage lists records with their products. A "type" filter matches the
// linked product's type and restricts the page to in-stock rows.
func (r *GormCloseoutRepository) FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[closeout.Record], error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 15
	}

	query := r.db.WithContext(ctx).Model(&closeout.Record{})
	if value, ok := filter.Filters["type"]; ok && value != nil && value != "" {
		productType := strings.ToUpper(strings.TrimSpace(value.(string)))
		query = query.
			Joins("JOIN products ON products.id = closeout_inventory.product_id").
			Where("products.type = ?", productType).
			Where("closeout_inventory.quantity > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[closeout.Record]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CloseoutSortFields, "model_number")

	var records []closeout.Record
	if err := query.
		Preload("Product").
		Order("closeout_inventory."+orderBy+" "+ValidateSortOrder(filter.OrderDir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return shared.Paginated[closeout.Record]{}, err
	}

	return shared.NewPaginated(records, total, page, pageSize), nil
}

// Save creates or updates a record
func (r *GormCloseoutRepository) Save(ctx context.Context, record *closeout.Record) error {
	return r.db.WithContext(ctx).Omit("Product").Save(record).Error
}

// DeleteMissing deletes records in the given warehouses whose SKU was not
// seen this pass. Warehouses outside the set are never touched.
func (r *GormCloseoutRepository) DeleteMissing(ctx context.Context, warehouses []string, seenSkus []string) (int64, error) {
	if len(warehouses) == 0 {
		return 0, nil
	}

	query := r.db.WithContext(ctx).Where("warehouse IN ?", warehouses)
	if len(seenSkus) > 0 {
		query = query.Where("acumatica_sku NOT IN ?", seenSkus)
	}

	result := query.Delete(&closeout.Record{})
	return result.RowsAffected, result.Error
}

// DeleteStale deletes zero-quantity records last synced at or before the cutoff
func (r *GormCloseoutRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("quantity = 0 AND last_synced_at <= ?", cutoff).
		Delete(&closeout.Record{})
	return result.RowsAffected, result.Error
}

// Ensure GormCloseoutRepository implements Repository
var _ closeout.Repository = (*GormCloseoutRepository)(nil)
