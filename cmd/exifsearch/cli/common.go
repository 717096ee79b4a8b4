package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/config"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/migrations"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/extract"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scan"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scheduler"
)

// loadConfig loads the merged configuration and a logger for one command.
func loadConfig(name string) (*config.BaseConfig, log.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, log.NewLoggerService(name, cfg.Log), nil
}

// buildStore opens the configured index store. When the SQLite database
// cannot be opened or migrated, the command degrades to a transient
// in-memory index so a single invocation still works without persistence.
func buildStore(ctx context.Context, cfg *config.BaseConfig, logger log.LoggerService) store.IndexStore {
	if cfg.Store.Type == "memory" {
		return store.NewMemoryStore()
	}

	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Store.SQLite.Path})
	if err == nil {
		if err = st.Connect(ctx); err == nil {
			if err = migrations.NewMigrator(st.DB()).Migrate(ctx); err == nil {
				return st
			}
		}
		st.Close()
	}

	logger.Warn("Index store unavailable, continuing without persistence: %v", err)
	return store.NewMemoryStore()
}

func buildExtractor(cfg *config.BaseConfig) extract.Extractor {
	if cfg.Extractor.Type == "native" {
		return extract.NewNative()
	}

	timeout, err := time.ParseDuration(cfg.Extractor.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}
	return extract.NewExifTool(cfg.Extractor.Command, timeout)
}

func buildWalker(cfg *config.BaseConfig) *scan.Walker {
	return scan.NewWalker(cfg.Scan.Patterns)
}

// schedulerConfig derives the worker pool settings, with a progress
// line printed to the terminal as files complete.
func schedulerConfig(cfg *config.BaseConfig, show bool) scheduler.Config {
	timeout, err := time.ParseDuration(cfg.Extractor.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	sched := scheduler.Config{
		BatchSize: cfg.Scan.BatchSize,
		Workers:   cfg.Scan.Workers,
		Timeout:   timeout,
	}
	if show {
		sched.Progress = func(p scheduler.Progress) {
			fmt.Printf("\rProcessing %d/%d files (%d failed)", p.Completed, p.Total, p.Failed)
			if p.Completed == p.Total {
				fmt.Println()
			}
		}
	}
	return sched
}
