package catalog

import (
	"context"

	"github.com/mld/backend/internal/domain/shared"
)

// ProductRepository defines the interface for catalog product persistence
type ProductRepository interface {
	// FindByModel finds a product by its normalized model key
	FindByModel(ctx context.Context, model string) (*Product, error)

	// FindBySlug finds a product by slug, case-insensitively
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Upsert inserts the product or, when its model already exists, replaces
	// every derived column on the stored row
	Upsert(ctx context.Context, product *Product) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
