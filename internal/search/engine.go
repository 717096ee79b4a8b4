package search

import (
	"context"
	"sort"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/extract"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scan"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scheduler"
)

// Engine resolves search predicates against the index store, falling
// back to live extraction for files the store has not seen yet.
// Live-extracted results are upserted so the next search hits the index.
type Engine struct {
	store     store.IndexStore
	extractor extract.Extractor
	walker    *scan.Walker
	sched     scheduler.Config
	log       log.LoggerService
}

func NewEngine(st store.IndexStore, ex extract.Extractor, walker *scan.Walker, sched scheduler.Config, logger log.LoggerService) *Engine {
	return &Engine{
		store:     st,
		extractor: ex,
		walker:    walker,
		sched:     sched,
		log:       logger,
	}
}

// Stats summarizes one search run.
type Stats struct {
	// Processed is the number of candidate files considered.
	Processed int
	// Extracted is the number of files resolved by live extraction
	// because the index had no record for them.
	Extracted int
	// Skipped is the number of files whose extraction failed.
	Skipped int
}

// Search returns the sorted, deduplicated absolute paths of all files
// under dirs whose metadata satisfies the predicate.
func (e *Engine) Search(ctx context.Context, dirs []string, pred models.Predicate) ([]string, Stats, error) {
	var stats Stats

	candidates, err := e.walker.Walk(dirs)
	if err != nil {
		return nil, stats, err
	}
	stats.Processed = len(candidates)
	if len(candidates) == 0 {
		return nil, stats, nil
	}

	inScope := make(map[string]bool, len(candidates))
	for _, path := range candidates {
		inScope[path] = true
	}

	existing, err := e.store.ExistingPaths(ctx, candidates)
	if err != nil {
		return nil, stats, err
	}

	matches := make(map[string]bool)

	// Answer from the index for everything it already holds
	records, err := e.store.Scan(ctx, pred)
	if err != nil {
		return nil, stats, err
	}
	for i := range records {
		if inScope[records[i].Path] {
			matches[records[i].Path] = true
		}
	}

	// Live-extract the rest and upsert opportunistically
	var missing []string
	for _, path := range candidates {
		if !existing[path] {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		if err := e.extractor.Check(); err != nil {
			return nil, stats, err
		}

		e.log.Debug("Live-extracting %d files missing from the index", len(missing))

		outcomes := scheduler.Run(ctx, missing, e.sched, func(ctx context.Context, path string) (map[string]string, error) {
			metadata, err := e.extractor.Extract(ctx, path)
			if err != nil {
				return nil, err
			}
			if err := e.store.Upsert(ctx, path, metadata); err != nil {
				e.log.Warn("Failed to index %s during search: %v", path, err)
			}
			return metadata, nil
		})

		for _, outcome := range outcomes {
			if outcome.Err != nil {
				stats.Skipped++
				e.log.Warn("Skipped %s: %v", outcome.Path, outcome.Err)
				continue
			}
			stats.Extracted++
			record := recordFromMetadata(outcome.Path, outcome.Payload)
			if pred.Matches(record) {
				matches[outcome.Path] = true
			}
		}
	}

	results := make([]string, 0, len(matches))
	for path := range matches {
		results = append(results, path)
	}
	sort.Strings(results)
	return results, stats, nil
}

func recordFromMetadata(path string, metadata map[string]string) *models.Record {
	record := &models.Record{
		Path:   path,
		Fields: make([]models.Field, 0, len(metadata)),
	}
	for key, value := range metadata {
		record.Fields = append(record.Fields, models.Field{Key: key, Value: value})
	}
	return record
}
