package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/extract"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scan"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scheduler"
)

// Indexer extracts metadata from image files in parallel batches and
// upserts the results into the index store.
type Indexer struct {
	store     store.IndexStore
	extractor extract.Extractor
	walker    *scan.Walker
	sched     scheduler.Config
	log       log.LoggerService
}

// Failure records one skipped file and the reason.
type Failure struct {
	Path string
	Err  error
}

// Summary is the end-of-run report for one indexing pass.
type Summary struct {
	RunID     string
	Processed int
	Indexed   int
	Skipped   int
	Failures  []Failure
}

func New(st store.IndexStore, ex extract.Extractor, walker *scan.Walker, sched scheduler.Config, logger log.LoggerService) *Indexer {
	return &Indexer{
		store:     st,
		extractor: ex,
		walker:    walker,
		sched:     sched,
		log:       logger,
	}
}

// IndexDirectories walks the given directories and indexes every
// matching file found.
func (ix *Indexer) IndexDirectories(ctx context.Context, dirs []string) (*Summary, error) {
	paths, err := ix.walker.Walk(dirs)
	if err != nil {
		return nil, err
	}
	return ix.IndexPaths(ctx, paths)
}

// IndexPaths extracts and upserts metadata for the given files. The
// extractor is verified once up front; a missing tool aborts the run,
// while per-file failures are collected into the summary.
func (ix *Indexer) IndexPaths(ctx context.Context, paths []string) (*Summary, error) {
	if err := ix.extractor.Check(); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Processed: len(paths),
	}

	ix.log.Info("Indexing run %s started: %d files", summary.RunID, len(paths))

	outcomes := scheduler.Run(ctx, paths, ix.sched, func(ctx context.Context, path string) (map[string]string, error) {
		metadata, err := ix.extractor.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := ix.store.Upsert(ctx, path, metadata); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", path, err)
		}
		return metadata, nil
	})

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			summary.Skipped++
			summary.Failures = append(summary.Failures, Failure{Path: outcome.Path, Err: outcome.Err})
			ix.log.Warn("Skipped %s: %v", outcome.Path, outcome.Err)
			continue
		}
		summary.Indexed++
	}

	ix.log.Info("Indexing run %s finished: %d indexed, %d skipped", summary.RunID, summary.Indexed, summary.Skipped)
	return summary, nil
}
