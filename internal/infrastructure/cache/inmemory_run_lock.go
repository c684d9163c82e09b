package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryRunLock implements RunLock using an in-memory map. Suitable for
// single-instance deployments and testing.
type InMemoryRunLock struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

// NewInMemoryRunLock creates a new in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{locks: make(map[string]time.Time)}
}

// Acquire takes the named lock for ttl. Returns false when the lock is held
// and not yet expired.
func (l *InMemoryRunLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.locks[name]; held && time.Now().Before(expiry) {
		return false, nil
	}
	l.locks[name] = time.Now().Add(ttl)
	return true, nil
}

// Release drops the named lock
func (l *InMemoryRunLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, name)
	return nil
}

// Ensure InMemoryRunLock implements RunLock
var _ RunLock = (*InMemoryRunLock)(nil)
