// Package lock provides the mutual-exclusion guard for queue draining.
package lock

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DrainLock is a non-blocking single-holder lock. At most one successful,
// unreleased TryAcquire exists at any time across the process.
type DrainLock struct {
	sem  *semaphore.Weighted
	held atomic.Bool
}

// New returns an unheld lock.
func New() *DrainLock {
	return &DrainLock{sem: semaphore.NewWeighted(1)}
}

// TryAcquire attempts to take the lock without blocking. Returns false if
// another holder currently holds it.
func (l *DrainLock) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.held.Store(true)
	return true
}

// Release frees a held lock. Calling it when the lock was never acquired is
// a no-op, so a deferred release is always safe.
func (l *DrainLock) Release() {
	if l.held.CompareAndSwap(true, false) {
		l.sem.Release(1)
	}
}
