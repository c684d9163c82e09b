package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/domain/shared"
)

func seedProduct(t *testing.T, db *gorm.DB, model, typ string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(model, catalog.Derived{
		Slug:  "brand-" + model,
		Brand: "Brand",
		Type:  typ,
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedRecord(t *testing.T, db *gorm.DB, productID uuid.UUID, model, sku, warehouse string, qty int) *closeout.Record {
	t.Helper()
	record, err := closeout.NewRecord(productID, model, sku, closeout.Snapshot{
		Quantity:  qty,
		MSRP:      decimal.NewFromInt(999),
		Warehouse: warehouse,
		Bin:       "A-01",
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestGormCloseoutRepository_Find(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormCloseoutRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "KFGC500JSS", "RANGES")
	seedRecord(t, db, product.ID, "KFGC500JSS", "WH KFG-C500/JSS NIB", "SALT LAKE CLOSEOUT", 3)

	t.Run("finds by model and sku", func(t *testing.T) {
		record, err := repo.FindByModelAndSku(ctx, "KFGC500JSS", "WH KFG-C500/JSS NIB")
		require.NoError(t, err)
		assert.Equal(t, 3, record.Quantity)
	})

	t.Run("returns not found for unknown key", func(t *testing.T) {
		_, err := repo.FindByModelAndSku(ctx, "KFGC500JSS", "WH OTHER NIB")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds by sku alone", func(t *testing.T) {
		record, err := repo.FindBySku(ctx, "WH KFG-C500/JSS NIB")
		require.NoError(t, err)
		assert.Equal(t, "KFGC500JSS", record.ModelNumber)
	})
}

func TestGormCloseoutRepository_FindPage(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormCloseoutRepository(db)
	ctx := context.Background()

	rangeProduct := seedProduct(t, db, "RANGE1", "RANGES")
	fridgeProduct := seedProduct(t, db, "FRIDGE1", "REFRIGERATORS")
	seedRecord(t, db, rangeProduct.ID, "RANGE1", "WH RANGE1 NIB", "SALT LAKE CLOSEOUT", 2)
	seedRecord(t, db, fridgeProduct.ID, "FRIDGE1", "WH FRIDGE1 NIB", "SALT LAKE CLOSEOUT", 1)
	seedRecord(t, db, rangeProduct.ID, "RANGE1", "WH RANGE1 DENT", "OGDEN CLOSEOUT", 0)

	t.Run("lists all records with products", func(t *testing.T) {
		page, err := repo.FindPage(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.NotEmpty(t, page.Items)
		require.NotNil(t, page.Items[0].Product)
	})

	t.Run("filters by product type and hides out of stock rows", func(t *testing.T) {
		page, err := repo.FindPage(ctx, shared.Filter{
			Page:     1,
			PageSize: 10,
			Filters:  map[string]any{"type": "ranges"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "WH RANGE1 NIB", page.Items[0].AcumaticaSku)
	})
}

func TestGormCloseoutRepository_DeleteMissing(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormCloseoutRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "RANGE1", "RANGES")
	seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 NIB", "SALT LAKE CLOSEOUT", 2)
	seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 DENT", "SALT LAKE CLOSEOUT", 1)
	seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 SCRATCH", "OGDEN CLOSEOUT", 1)

	t.Run("deletes unseen skus only in observed warehouses", func(t *testing.T) {
		deleted, err := repo.DeleteMissing(ctx, []string{"SALT LAKE CLOSEOUT"}, []string{"WH RANGE1 NIB"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		// row in the unobserved warehouse survives even though its sku was unseen
		_, err = repo.FindBySku(ctx, "WH RANGE1 SCRATCH")
		assert.NoError(t, err)

		_, err = repo.FindBySku(ctx, "WH RANGE1 DENT")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does nothing without observed warehouses", func(t *testing.T) {
		deleted, err := repo.DeleteMissing(ctx, nil, nil)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestGormCloseoutRepository_DeleteStale(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormCloseoutRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "RANGE1", "RANGES")
	stale := seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 OLD", "SALT LAKE CLOSEOUT", 0)
	fresh := seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 NEW", "SALT LAKE CLOSEOUT", 0)
	inStock := seedRecord(t, db, product.ID, "RANGE1", "WH RANGE1 NIB", "SALT LAKE CLOSEOUT", 4)

	fourDaysAgo := time.Now().Add(-4 * 24 * time.Hour)
	require.NoError(t, db.Model(stale).Update("last_synced_at", fourDaysAgo).Error)
	require.NoError(t, db.Model(inStock).Update("last_synced_at", fourDaysAgo).Error)

	t.Run("deletes only zero quantity rows past the cutoff", func(t *testing.T) {
		cutoff := time.Now().Add(-3 * 24 * time.Hour)
		deleted, err := repo.DeleteStale(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.FindBySku(ctx, "WH RANGE1 OLD")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindBySku(ctx, fresh.AcumaticaSku)
		assert.NoError(t, err)
		_, err = repo.FindBySku(ctx, inStock.AcumaticaSku)
		assert.NoError(t, err)
	})
}
