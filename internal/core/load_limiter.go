package core

// load_limiter.go bounds how many dataset loads run at once.
//
// Every API request reads its age-group folder from disk, so a burst of
// requests turns into a burst of parallel CSV parses. LoadLimiter is a
// semaphore: callers wait up to maxWait for a slot and then fail with
// ErrTooManyLoads. WaitForDrain lets shutdown wait for in-flight loads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when no load slot frees up within the wait.
var ErrTooManyLoads = errors.New("too many concurrent loads")

// Defaults used when the limiter is built with non-positive values.
const (
	DefaultMaxConcurrentLoads = 4
	DefaultLoadWait           = 10 * time.Second
)

// LoadLimiter restricts concurrent loads with a buffered-channel semaphore.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewLoadLimiter allows at most maxConcurrent loads; waiters give up after maxWait.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
// Returns ctx.Err() if ctx ends first, ErrTooManyLoads on timeout.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// TryAcquire takes a slot without blocking.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of loads holding a slot.
func (l *LoadLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *LoadLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no load holds a slot or ctx ends.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Load acquires a slot, runs loader.Load and releases the slot.
func (l *LoadLimiter) Load(ctx context.Context, loader *Loader, ageGroup string) (*Table, error) {
	if err := l.Acquire(ctx); err != nil {
		return nil, err
	}
	defer l.Release()
	return loader.Load(ctx, ageGroup)
}
