package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/infrastructure/cache"
)

// InventorySyncer runs one closeout reconciliation pass
type InventorySyncer interface {
	RunSnapshot(ctx context.Context) (*closeout.SyncReport, error)
}

// CatalogIngester runs one all-manufacturers feed ingest
type CatalogIngester interface {
	IngestAll(ctx context.Context) error
}

// RunStatus is the outcome of one scheduled run
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// RunRecord captures one scheduled run for monitoring
type RunRecord struct {
	Kind        string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// SyncSchedulerConfig holds configuration for the periodic sync scheduler
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// SyncInterval is how often the inventory reconciliation runs
	SyncInterval time.Duration
	// IngestInterval is how often the full catalog ingest runs
	IngestInterval time.Duration
	// RunTimeout is the maximum time one run can take
	RunTimeout time.Duration
	// LockTTL is the distributed run lock expiry
	LockTTL time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:        true,
		SyncInterval:   time.Hour,
		IngestInterval: 24 * time.Hour,
		RunTimeout:     30 * time.Minute,
		LockTTL:        30 * time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.SyncInterval <= 0 || c.IngestInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 || c.LockTTL <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Lock names shared with any other process running the same jobs
const (
	inventoryLockName = "closeout-inventory"
	catalogLockName   = "catalog-ingest"
)

// SyncScheduler periodically triggers catalog ingest and closeout inventory
// reconciliation. A distributed run lock keeps concurrent deployments from
// running the same job twice; losing the lock only skips the tick.
type SyncScheduler struct {
	config    SyncSchedulerConfig
	inventory InventorySyncer
	catalog   CatalogIngester
	lock      cache.RunLock
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	historyMu  sync.RWMutex
	history    []RunRecord
	maxHistory int
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(
	config SyncSchedulerConfig,
	inventory InventorySyncer,
	catalog CatalogIngester,
	lock cache.RunLock,
	logger *zap.Logger,
) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:     config,
		inventory:  inventory,
		catalog:    catalog,
		lock:       lock,
		logger:     logger,
		history:    make([]RunRecord, 0, 20),
		maxHistory: 20,
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("sync_interval", s.config.SyncInterval),
		zap.Duration("ingest_interval", s.config.IngestInterval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	syncTicker := time.NewTicker(s.config.SyncInterval)
	defer syncTicker.Stop()
	ingestTicker := time.NewTicker(s.config.IngestInterval)
	defer ingestTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			s.RunInventorySync(ctx)
		case <-ingestTicker.C:
			s.RunCatalogIngest(ctx)
		}
	}
}

// RunInventorySync executes one lock-guarded reconciliation pass
func (s *SyncScheduler) RunInventorySync(ctx context.Context) RunRecord {
	return s.runLocked(ctx, "inventory_sync", inventoryLockName, func(runCtx context.Context) error {
		report, err := s.inventory.RunSnapshot(runCtx)
		if err != nil {
			return err
		}
		s.logger.Info("Scheduled inventory sync finished",
			zap.Int("updated", report.UpdatedCount),
			zap.Int("failures", report.FailuresCount),
			zap.Int64("missing_deleted", report.MissingDeletedCount),
			zap.Int64("stale_deleted", report.HousekeepingDeletedCount),
		)
		return nil
	})
}

// RunCatalogIngest executes one lock-guarded full catalog ingest
func (s *SyncScheduler) RunCatalogIngest(ctx context.Context) RunRecord {
	return s.runLocked(ctx, "catalog_ingest", catalogLockName, func(runCtx context.Context) error {
		return s.catalog.IngestAll(runCtx)
	})
}

func (s *SyncScheduler) runLocked(ctx context.Context, kind, lockName string, run func(context.Context) error) RunRecord {
	record := RunRecord{Kind: kind, StartedAt: time.Now()}

	acquired, err := s.lock.Acquire(ctx, lockName, s.config.LockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire run lock",
			zap.String("kind", kind),
			zap.Error(err))
		record.Status = RunStatusFailed
		record.Error = err.Error()
		record.CompletedAt = time.Now()
		s.addToHistory(record)
		return record
	}
	if !acquired {
		s.logger.Info("Run already in progress elsewhere, skipping",
			zap.String("kind", kind))
		record.Status = RunStatusSkipped
		record.CompletedAt = time.Now()
		s.addToHistory(record)
		return record
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
			s.logger.Warn("Failed to release run lock",
				zap.String("kind", kind),
				zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	if err := run(runCtx); err != nil {
		s.logger.Error("Scheduled run failed",
			zap.String("kind", kind),
			zap.Error(err))
		record.Status = RunStatusFailed
		record.Error = err.Error()
	} else {
		record.Status = RunStatusSuccess
	}
	record.CompletedAt = time.Now()
	s.addToHistory(record)
	return record
}

func (s *SyncScheduler) addToHistory(record RunRecord) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]RunRecord{record}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// History returns recent run records, newest first
func (s *SyncScheduler) History(limit int) []RunRecord {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]RunRecord, limit)
	copy(result, s.history[:limit])
	return result
}
