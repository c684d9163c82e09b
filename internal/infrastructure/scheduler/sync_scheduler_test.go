package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/domain/shared"
	"github.com/mld/backend/internal/infrastructure/cache"
)

type stubSyncer struct {
	calls  int
	report *closeout.SyncReport
	err    error
	block  time.Duration
}

func (s *stubSyncer) RunSnapshot(ctx context.Context) (*closeout.SyncReport, error) {
	s.calls++
	if s.block > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.block):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type stubIngester struct {
	calls int
	err   error
}

func (s *stubIngester) IngestAll(ctx context.Context) error {
	s.calls++
	return s.err
}

func newTestScheduler(t *testing.T, syncer InventorySyncer, ingester CatalogIngester) *SyncScheduler {
	t.Helper()
	cfg := DefaultSyncSchedulerConfig()
	cfg.SyncInterval = 10 * time.Millisecond
	cfg.IngestInterval = time.Hour
	sched, err := NewSyncScheduler(cfg, syncer, ingester, cache.NewInMemoryRunLock(), zap.NewNop())
	require.NoError(t, err)
	return sched
}

func TestSyncSchedulerConfigValidate(t *testing.T) {
	cfg := DefaultSyncSchedulerConfig()
	require.NoError(t, cfg.Validate())

	cfg.SyncInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultSyncSchedulerConfig()
	cfg.LockTTL = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestSyncSchedulerRunInventorySync(t *testing.T) {
	ctx := context.Background()

	t.Run("records a successful run", func(t *testing.T) {
		syncer := &stubSyncer{report: &closeout.SyncReport{Success: true, UpdatedCount: 2}}
		sched := newTestScheduler(t, syncer, &stubIngester{})

		record := sched.RunInventorySync(ctx)

		assert.Equal(t, RunStatusSuccess, record.Status)
		assert.Equal(t, 1, syncer.calls)
		history := sched.History(10)
		require.Len(t, history, 1)
		assert.Equal(t, "inventory_sync", history[0].Kind)
	})

	t.Run("records a failed run with the error", func(t *testing.T) {
		syncer := &stubSyncer{err: shared.ErrExternalService}
		sched := newTestScheduler(t, syncer, &stubIngester{})

		record := sched.RunInventorySync(ctx)

		assert.Equal(t, RunStatusFailed, record.Status)
		assert.NotEmpty(t, record.Error)
	})

	t.Run("skips when the lock is held", func(t *testing.T) {
		lock := cache.NewInMemoryRunLock()
		held, err := lock.Acquire(ctx, "closeout-inventory", time.Minute)
		require.NoError(t, err)
		require.True(t, held)

		syncer := &stubSyncer{report: &closeout.SyncReport{Success: true}}
		cfg := DefaultSyncSchedulerConfig()
		sched, err := NewSyncScheduler(cfg, syncer, &stubIngester{}, lock, zap.NewNop())
		require.NoError(t, err)

		record := sched.RunInventorySync(ctx)

		assert.Equal(t, RunStatusSkipped, record.Status)
		assert.Zero(t, syncer.calls)
	})

	t.Run("releases the lock after the run", func(t *testing.T) {
		syncer := &stubSyncer{report: &closeout.SyncReport{Success: true}}
		sched := newTestScheduler(t, syncer, &stubIngester{})

		first := sched.RunInventorySync(ctx)
		second := sched.RunInventorySync(ctx)

		assert.Equal(t, RunStatusSuccess, first.Status)
		assert.Equal(t, RunStatusSuccess, second.Status)
		assert.Equal(t, 2, syncer.calls)
	})
}

func TestSyncSchedulerRunCatalogIngest(t *testing.T) {
	ctx := context.Background()

	ingester := &stubIngester{}
	sched := newTestScheduler(t, &stubSyncer{}, ingester)

	record := sched.RunCatalogIngest(ctx)

	assert.Equal(t, RunStatusSuccess, record.Status)
	assert.Equal(t, "catalog_ingest", record.Kind)
	assert.Equal(t, 1, ingester.calls)
}

func TestSyncSchedulerStartStop(t *testing.T) {
	ctx := context.Background()

	syncer := &stubSyncer{report: &closeout.SyncReport{Success: true}}
	sched := newTestScheduler(t, syncer, &stubIngester{})

	require.NoError(t, sched.Start(ctx))
	// double start is a no-op
	require.NoError(t, sched.Start(ctx))

	time.Sleep(50 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sched.Stop(stopCtx))

	assert.GreaterOrEqual(t, syncer.calls, 1)
}
