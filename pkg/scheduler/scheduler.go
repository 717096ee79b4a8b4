// Package scheduler dispatches per-file operations across a bounded
// worker pool. Paths are split into consecutive batches; inside a batch
// at most Workers operations run concurrently, and one worker failing
// never cancels its siblings. Cancellation is honored at batch
// boundaries so in-flight operations always run to completion.
package scheduler

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 24
)

// Config controls batching and concurrency for a single run.
type Config struct {
	// BatchSize is the number of paths per batch (default 100).
	BatchSize int
	// Workers is the maximum number of concurrently executing
	// operations (default 24).
	Workers int
	// Timeout bounds a single operation; exceeding it fails that
	// operation only. Zero disables the deadline.
	Timeout time.Duration
	// Progress, when set, is called after every completed operation.
	Progress func(p Progress)
}

func (cfg Config) withDefaults() Config {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return cfg
}

// Progress reports how far a run has advanced.
type Progress struct {
	Total     int
	Completed int
	Failed    int
	Elapsed   time.Duration
}

// Task is one per-file operation, typically an extractor or mover call.
type Task[T any] func(ctx context.Context, path string) (T, error)

// Outcome is the result of one task invocation. Exactly one outcome is
// produced per input path; failed tasks carry their error instead of
// aborting the run.
type Outcome[T any] struct {
	Path     string
	Payload  T
	Err      error
	Duration time.Duration
}

// Run executes fn for every path and returns one outcome per path.
// Outcome order follows input order, though completion order does not.
func Run[T any](ctx context.Context, paths []string, cfg Config, fn Task[T]) []Outcome[T] {
	cfg = cfg.withDefaults()

	total := len(paths)
	outcomes := make([]Outcome[T], total)
	if total == 0 {
		return outcomes
	}

	var mutex sync.Mutex
	completed := 0
	failed := 0
	startTime := time.Now()

	semaphore := make(chan struct{}, cfg.Workers)

	for start := 0; start < total; start += cfg.BatchSize {
		// Cooperative checkpoint between batches: an aborted run fails
		// the remaining paths without interrupting in-flight work.
		if err := ctx.Err(); err != nil {
			for i := start; i < total; i++ {
				outcomes[i] = Outcome[T]{Path: paths[i], Err: err}
			}
			mutex.Lock()
			failed += total - start
			completed += total - start
			mutex.Unlock()
			notifyProgress(cfg, total, completed, failed, startTime)
			return outcomes
		}

		end := min(start+cfg.BatchSize, total)

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)

			go func(index int, path string) {
				defer wg.Done()

				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				// Aborting a run must never interrupt a dispatched
				// operation, so tasks run detached from the run
				// context; only the per-task deadline applies.
				taskCtx := context.WithoutCancel(ctx)
				if cfg.Timeout > 0 {
					var cancel context.CancelFunc
					taskCtx, cancel = context.WithTimeout(taskCtx, cfg.Timeout)
					defer cancel()
				}

				taskStart := time.Now()
				payload, err := fn(taskCtx, path)

				outcomes[index] = Outcome[T]{
					Path:     path,
					Payload:  payload,
					Err:      err,
					Duration: time.Since(taskStart),
				}

				mutex.Lock()
				completed++
				if err != nil {
					failed++
				}
				done, bad := completed, failed
				mutex.Unlock()

				notifyProgress(cfg, total, done, bad, startTime)
			}(i, paths[i])
		}

		wg.Wait()
	}

	return outcomes
}

func notifyProgress(cfg Config, total, completed, failed int, startTime time.Time) {
	if cfg.Progress == nil {
		return
	}

	cfg.Progress(Progress{
		Total:     total,
		Completed: completed,
		Failed:    failed,
		Elapsed:   time.Since(startTime),
	})
}
