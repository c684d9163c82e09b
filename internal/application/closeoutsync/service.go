package closeoutsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/domain/shared"
	"github.com/mld/backend/internal/infrastructure/acumatica"
)

// SnapshotSource provides the full ERP closeout rows for one sync pass
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) ([]acumatica.InventoryItem, error)
}

// Notifier delivers sync notifications
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	DefaultRecipient() string
}

// SyncService reconciles ERP closeout inventory against the stored records.
// Items are processed one at a time; re-running a pass converges.
type SyncService struct {
	records    closeout.Repository
	products   catalog.ProductRepository
	source     SnapshotSource
	notifier   Notifier
	logger     *zap.Logger
	staleAfter time.Duration
}

// NewSyncService creates a new SyncService
func NewSyncService(
	records closeout.Repository,
	products catalog.ProductRepository,
	source SnapshotSource,
	notifier Notifier,
	logger *zap.Logger,
	staleAfterDays int,
) *SyncService {
	if staleAfterDays <= 0 {
		staleAfterDays = 3
	}
	return &SyncService{
		records:    records,
		products:   products,
		source:     source,
		notifier:   notifier,
		logger:     logger,
		staleAfter: time.Duration(staleAfterDays) * 24 * time.Hour,
	}
}

// RunSnapshot executes one full reconciliation pass: fetch the ERP snapshot,
// upsert every row, diff-delete unseen SKUs in the observed warehouses,
// sweep stale zero-quantity rows, and send one batched failure email.
func (s *SyncService) RunSnapshot(ctx context.Context) (*closeout.SyncReport, error) {
	s.logger.Info("starting closeout inventory sync")

	items, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no inventory records returned", shared.ErrExternalService)
	}
	s.logger.Info("received closeout inventory rows", zap.Int("count", len(items)))

	report := &closeout.SyncReport{Success: true}
	seenSkus := make([]string, 0, len(items))
	seenWarehouses := make([]string, 0, 4)
	skuSet := make(map[string]struct{}, len(items))
	warehouseSet := make(map[string]struct{}, 4)

	for _, item := range items {
		if item.InventoryID == "" {
			s.logger.Warn("skipping item without InventoryID")
			continue
		}
		sku, err := closeout.ParseSKU(item.InventoryID)
		if err != nil {
			s.logger.Warn("skipping malformed sku", zap.String("sku", item.InventoryID))
			continue
		}

		if _, ok := skuSet[sku.Raw]; !ok {
			skuSet[sku.Raw] = struct{}{}
			seenSkus = append(seenSkus, sku.Raw)
		}
		warehouse := item.Warehouse
		if warehouse == "" {
			warehouse = closeout.DefaultWarehouse
		}
		if _, ok := warehouseSet[warehouse]; !ok {
			warehouseSet[warehouse] = struct{}{}
			seenWarehouses = append(seenWarehouses, warehouse)
		}

		if err := s.reconcile(ctx, sku, snapshotFromItem(item), report); err != nil {
			return nil, err
		}
	}

	missing, err := s.records.DeleteMissing(ctx, seenWarehouses, seenSkus)
	if err != nil {
		return nil, err
	}
	report.MissingDeletedCount = missing
	if missing > 0 {
		s.logger.Info("deleted rows missing from feed",
			zap.Int64("count", missing),
			zap.Strings("warehouses", seenWarehouses))
	}

	stale, err := s.records.DeleteStale(ctx, time.Now().Add(-s.staleAfter))
	if err != nil {
		return nil, err
	}
	report.HousekeepingDeletedCount = stale
	s.logger.Info("housekeeping removed stale rows", zap.Int64("count", stale))

	s.sendFailureReport(ctx, report)
	return report, nil
}

// reconcile applies one snapshot row: update the existing record or create a
// new one linked to its catalog product. Unmatched models become failures,
// never orphan rows.
func (s *SyncService) reconcile(ctx context.Context, sku closeout.SKU, snap closeout.Snapshot, report *closeout.SyncReport) error {
	record, err := s.records.FindByModelAndSku(ctx, sku.NormalizedModel, sku.Raw)
	switch {
	case err == nil:
		record.ApplySnapshot(snap)
		if err := s.records.Save(ctx, record); err != nil {
			return err
		}
	case errors.Is(err, shared.ErrNotFound):
		product, perr := s.products.FindByModel(ctx, sku.NormalizedModel)
		if errors.Is(perr, shared.ErrNotFound) {
			s.logger.Warn("product not found in catalog",
				zap.String("model", sku.NormalizedModel),
				zap.String("sku", sku.Raw))
			report.AddFailure(sku.Raw, sku.NormalizedModel, "Product not found in catalog")
			return nil
		}
		if perr != nil {
			return perr
		}
		record, rerr := closeout.NewRecord(product.ID, sku.NormalizedModel, sku.Raw, snap)
		if rerr != nil {
			return rerr
		}
		if err := s.records.Save(ctx, record); err != nil {
			return err
		}
	default:
		return err
	}

	report.AddUpdated(closeout.UpdatedRecord{
		ModelNumber:  sku.NormalizedModel,
		AcumaticaSku: sku.Raw,
		Quantity:     snap.Quantity,
		Price:        snap.Price,
		MSRP:         snap.MSRP,
		Warehouse:    snap.Warehouse,
		Bin:          snap.Bin,
	})
	return nil
}

// ApplyEvents consumes discrete inserted/deleted event lists. Insert events
// upsert; delete events decrement the stored quantity, floored at zero. No
// diff-delete or housekeeping runs in this mode.
func (s *SyncService) ApplyEvents(ctx context.Context, batch EventBatch) (*closeout.SyncReport, error) {
	if len(batch.Inserted) == 0 && len(batch.Deleted) == 0 {
		return nil, fmt.Errorf("%w: no inventory records to process", shared.ErrInvalidInput)
	}

	report := &closeout.SyncReport{Success: true}

	for _, event := range batch.Inserted {
		sku, err := closeout.ParseSKU(event.InventoryID)
		if err != nil {
			s.logger.Warn("skipping malformed sku", zap.String("sku", event.InventoryID))
			continue
		}
		snap := closeout.Snapshot{Quantity: event.QtyOnHand, Price: event.price()}

		record, err := s.records.FindByModelAndSku(ctx, sku.NormalizedModel, sku.Raw)
		switch {
		case err == nil:
			record.ApplyEvent(event.QtyOnHand, event.price())
			if err := s.records.Save(ctx, record); err != nil {
				return nil, err
			}
		case errors.Is(err, shared.ErrNotFound):
			product, perr := s.products.FindByModel(ctx, sku.NormalizedModel)
			if errors.Is(perr, shared.ErrNotFound) {
				s.logger.Warn("product not found in catalog",
					zap.String("model", sku.NormalizedModel),
					zap.String("sku", sku.Raw))
				report.AddFailure(sku.Raw, sku.NormalizedModel, "Product not found in catalog")
				continue
			}
			if perr != nil {
				return nil, perr
			}
			created, rerr := closeout.NewRecord(product.ID, sku.NormalizedModel, sku.Raw, snap)
			if rerr != nil {
				return nil, rerr
			}
			if err := s.records.Save(ctx, created); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		report.AddUpdated(closeout.UpdatedRecord{
			ModelNumber:  sku.NormalizedModel,
			AcumaticaSku: sku.Raw,
			Quantity:     event.QtyOnHand,
			Price:        event.price(),
		})
	}

	for _, event := range batch.Deleted {
		sku, err := closeout.ParseSKU(event.InventoryID)
		if err != nil {
			s.logger.Warn("skipping malformed sku", zap.String("sku", event.InventoryID))
			continue
		}

		record, err := s.records.FindByModelAndSku(ctx, sku.NormalizedModel, sku.Raw)
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("no closeout record for delete event", zap.String("sku", sku.Raw))
			continue
		}
		if err != nil {
			return nil, err
		}

		record.Decrement(event.QtyOnHand, event.price())
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		report.AddUpdated(closeout.UpdatedRecord{
			ModelNumber:  sku.NormalizedModel,
			AcumaticaSku: sku.Raw,
			Quantity:     record.Quantity,
			Price:        record.Price,
		})
	}

	s.sendFailureReport(ctx, report)
	return report, nil
}

// CreateFromEvent is the legacy create path: it registers the first inserted
// event as a zero-quantity closeout row, keyed by SKU alone, refreshing the
// price when the SKU already exists.
func (s *SyncService) CreateFromEvent(ctx context.Context, batch EventBatch) (*closeout.Record, error) {
	if len(batch.Inserted) == 0 {
		return nil, fmt.Errorf("%w: Inserted array is required", shared.ErrInvalidInput)
	}
	event := batch.Inserted[0]
	if event.InventoryID == "" {
		return nil, fmt.Errorf("%w: InventoryID is required", shared.ErrInvalidInput)
	}

	sku, err := closeout.ParseSKU(event.InventoryID)
	if err != nil {
		return nil, err
	}

	// this path looks up by the raw model token, not the normalized key
	product, err := s.products.FindByModel(ctx, sku.ModelNumber)
	if errors.Is(err, shared.ErrNotFound) {
		s.notify(ctx, NotFoundEmailSubject, NotFoundEmailBody(sku.ModelNumber, sku.Raw))
		return nil, fmt.Errorf("%w: product not found in catalog", shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	record, err := s.records.FindBySku(ctx, sku.Raw)
	switch {
	case err == nil:
		record.RefreshPrice(event.price())
	case errors.Is(err, shared.ErrNotFound):
		record, err = closeout.NewRecord(product.ID, sku.ModelNumber, sku.Raw, closeout.Snapshot{
			Quantity: 0,
			Price:    event.price(),
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// sendFailureReport emails the batched failure table, at most once per run.
// Delivery problems are logged; a completed pass is not failed retroactively.
func (s *SyncService) sendFailureReport(ctx context.Context, report *closeout.SyncReport) {
	if report.FailuresCount == 0 {
		s.logger.Info("no sync failures to report")
		return
	}
	s.logger.Warn("inventory items failed to match products",
		zap.Int("count", report.FailuresCount))
	s.notify(ctx, FailureEmailSubject, FailureReportHTML(report.Failures))
}

func (s *SyncService) notify(ctx context.Context, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, s.notifier.DefaultRecipient(), subject, body); err != nil {
		s.logger.Error("failed to send notification", zap.String("subject", subject), zap.Error(err))
	}
}

func snapshotFromItem(item acumatica.InventoryItem) closeout.Snapshot {
	return closeout.Snapshot{
		Quantity:  item.QtyOnHand,
		Price:     item.DefaultPrice,
		MSRP:      item.MSRP,
		Warehouse: item.Warehouse,
		Bin:       item.Location,
		NewInBox:  false,
	}
}
