package closeout

import (
	"context"
	"time"

	"github.com/mld/backend/internal/domain/shared"
)

// Repository defines the interface for closeout inventory persistence
type Repository interface {
	// FindByModelAndSku finds a record by the sync-path uniqueness key
	FindByModelAndSku(ctx context.Context, modelNumber, acumaticaSku string) (*Record, error)

	// FindBySku finds a record by SKU alone (legacy create path)
	FindBySku(ctx context.Context, acumaticaSku string) (*Record, error)

	// FindPage lists records with their products. The "type" filter matches
	// the linked product's type and restricts the page to in-stock rows.
	FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[Record], error)

	// Save creates or updates a record
	Save(ctx context.Context, record *Record) error

	// DeleteMissing deletes records in the given warehouses whose SKU is not
	// in the seen set, returning the number deleted
	DeleteMissing(ctx context.Context, warehouses []string, seenSkus []string) (int64, error)

	// DeleteStale deletes zero-quantity records last synced at or before the
	// cutoff, returning the number deleted
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}
