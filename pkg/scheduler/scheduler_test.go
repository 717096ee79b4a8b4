package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/images/%04d.png", i)
	}
	return paths
}

func TestRun_OneOutcomePerPath(t *testing.T) {
	paths := testPaths(250)

	outcomes := Run(context.Background(), paths, Config{BatchSize: 100, Workers: 8}, func(ctx context.Context, path string) (string, error) {
		return path, nil
	})

	require.Len(t, outcomes, len(paths))
	seen := make(map[string]bool)
	for i, outcome := range outcomes {
		require.NoError(t, outcome.Err)
		assert.Equal(t, paths[i], outcome.Path)
		assert.Equal(t, paths[i], outcome.Payload)
		seen[outcome.Path] = true
	}
	assert.Len(t, seen, len(paths))
}

func TestRun_FailureIsolation(t *testing.T) {
	paths := testPaths(120)

	outcomes := Run(context.Background(), paths, Config{BatchSize: 50, Workers: 8}, func(ctx context.Context, path string) (int, error) {
		if strings.HasSuffix(path, "0042.png") {
			return 0, fmt.Errorf("unreadable")
		}
		return 1, nil
	})

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			assert.Equal(t, "/images/0042.png", outcome.Path)
			continue
		}
		assert.Equal(t, 1, outcome.Payload)
	}
	assert.Equal(t, 1, failed)
}

func TestRun_ConcurrencyBound(t *testing.T) {
	const workers = 4
	var inFlight, peak int64

	Run(context.Background(), testPaths(100), Config{BatchSize: 25, Workers: workers}, func(ctx context.Context, path string) (struct{}, error) {
		current := atomic.AddInt64(&inFlight, 1)
		for {
			observed := atomic.LoadInt64(&peak)
			if current <= observed || atomic.CompareAndSwapInt64(&peak, observed, current) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(workers))
	assert.Greater(t, atomic.LoadInt64(&peak), int64(0))
}

func TestRun_CancelBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started int64
	outcomes := Run(ctx, testPaths(60), Config{BatchSize: 20, Workers: 4}, func(ctx context.Context, path string) (struct{}, error) {
		atomic.AddInt64(&started, 1)
		cancel()
		return struct{}{}, nil
	})

	require.Len(t, outcomes, 60)

	// The active batch runs to completion; later batches fail with the
	// context error instead of being dispatched.
	assert.EqualValues(t, 20, atomic.LoadInt64(&started))
	for _, outcome := range outcomes[:20] {
		assert.NoError(t, outcome.Err)
	}
	for _, outcome := range outcomes[20:] {
		assert.ErrorIs(t, outcome.Err, context.Canceled)
	}
}

func TestRun_InFlightTasksDetachedFromCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var interrupted int64
	outcomes := Run(ctx, testPaths(4), Config{BatchSize: 2, Workers: 2}, func(taskCtx context.Context, path string) (struct{}, error) {
		cancel()
		time.Sleep(5 * time.Millisecond)
		if taskCtx.Err() != nil {
			atomic.AddInt64(&interrupted, 1)
		}
		return struct{}{}, nil
	})

	// Cancelling under a dispatched operation never interrupts it; the
	// abort only takes effect at the next batch boundary.
	assert.EqualValues(t, 0, atomic.LoadInt64(&interrupted))
	for _, outcome := range outcomes[:2] {
		assert.NoError(t, outcome.Err)
	}
	for _, outcome := range outcomes[2:] {
		assert.ErrorIs(t, outcome.Err, context.Canceled)
	}
}

func TestRun_TaskTimeout(t *testing.T) {
	outcomes := Run(context.Background(), []string{"/images/slow.png", "/images/fast.png"}, Config{Workers: 2, Timeout: 20 * time.Millisecond}, func(ctx context.Context, path string) (struct{}, error) {
		if strings.Contains(path, "slow") {
			<-ctx.Done()
			return struct{}{}, ctx.Err()
		}
		return struct{}{}, nil
	})

	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
	assert.NoError(t, outcomes[1].Err)
}

func TestRun_Progress(t *testing.T) {
	var mutex sync.Mutex
	var last Progress

	Run(context.Background(), testPaths(30), Config{BatchSize: 10, Workers: 4, Progress: func(p Progress) {
		mutex.Lock()
		defer mutex.Unlock()
		if p.Completed > last.Completed {
			last = p
		}
	}}, func(ctx context.Context, path string) (struct{}, error) {
		return struct{}{}, nil
	})

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, 30, last.Total)
	assert.Equal(t, 30, last.Completed)
	assert.Equal(t, 0, last.Failed)
}
