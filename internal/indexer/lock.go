package indexer

import "sync/atomic"

// importLock admits one feed import at a time. A second caller fails fast
// instead of queueing behind a long import.
type importLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// tryAcquire takes the lock if it is free
func (l *importLock) tryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// release frees the lock; only the holder may call it
func (l *importLock) release() {
	l.state.Store(0)
}

// held reports whether an import is running
func (l *importLock) held() bool {
	return l.state.Load() == 1
}
