package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLimiter_AcquireRelease(t *testing.T) {
	l := NewLoadLimiter(2, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.Active())
	assert.False(t, l.TryAcquire(), "no slot left")

	l.Release()
	assert.Equal(t, 1, l.Active())
	assert.True(t, l.TryAcquire())

	l.Release()
	l.Release()
	assert.Equal(t, 0, l.Active())
}

func TestLoadLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewLoadLimiter(1, 50*time.Millisecond)
	require.True(t, l.TryAcquire())
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTooManyLoads)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLoadLimiter_ContextCancellation(t *testing.T) {
	l := NewLoadLimiter(1, 5*time.Second)
	require.True(t, l.TryAcquire())
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestLoadLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	l := NewLoadLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			mu.Lock()
			maxObserved = max(maxObserved, l.Active())
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved, maxConcurrent)
	assert.Equal(t, 0, l.Active())
}

func TestLoadLimiter_WaitForDrain(t *testing.T) {
	l := NewLoadLimiter(2, time.Second)
	require.True(t, l.TryAcquire())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned with a load in flight")
	case <-time.After(60 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestLoadLimiter_Defaults(t *testing.T) {
	l := NewLoadLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentLoads, l.MaxConcurrent())
}

func TestLoadLimiter_Load(t *testing.T) {
	loader := newTestLoader(t, sampleDataset())
	l := NewLoadLimiter(1, time.Second)

	tbl, err := l.Load(context.Background(), loader, "15_49")
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())
	assert.Equal(t, 0, l.Active(), "slot released after load")

	quick := NewLoadLimiter(1, time.Millisecond)
	require.True(t, quick.TryAcquire())
	_, err = quick.Load(context.Background(), loader, "15_49")
	assert.ErrorIs(t, err, ErrTooManyLoads)
	quick.Release()
}
