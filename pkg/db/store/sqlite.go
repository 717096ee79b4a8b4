package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
)

// lookupChunkSize bounds the size of IN (...) clauses when resolving
// which paths already have records.
const lookupChunkSize = 500

// SQLiteStore implements IndexStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed index store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", ErrStoreUnavailable)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.Record{},
		&models.Field{},
	)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, path string, metadata map[string]string) error {
	now := time.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.Record
		err := tx.Where("path = ?", path).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.Record{
				Path:        path,
				LastIndexed: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Replace the existing field set entirely
			if err := tx.Unscoped().Where("record_id = ?", record.ID).Delete(&models.Field{}).Error; err != nil {
				return err
			}
			record.LastIndexed = now
			if err := tx.Model(&record).Update("last_indexed", now).Error; err != nil {
				return err
			}
		}

		fields := make([]models.Field, 0, len(metadata))
		for key, value := range metadata {
			fields = append(fields, models.Field{
				RecordID: record.ID,
				Key:      key,
				Value:    value,
			})
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Create(&fields).Error
	})
}

func (s *SQLiteStore) Get(ctx context.Context, path string) (*models.Record, error) {
	var record models.Record
	err := s.db.WithContext(ctx).
		Preload("Fields").
		Where("path = ?", path).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *SQLiteStore) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(paths))

	for start := 0; start < len(paths); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(paths))

		var found []string
		err := s.db.WithContext(ctx).
			Model(&models.Record{}).
			Where("path IN ?", paths[start:end]).
			Pluck("path", &found).Error
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			existing[p] = true
		}
	}

	return existing, nil
}

func (s *SQLiteStore) RewritePath(ctx context.Context, oldPath, newPath string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Record{}).
			Where("path = ?", oldPath).
			Update("path", newPath)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *SQLiteStore) Scan(ctx context.Context, pred models.Predicate) ([]models.Record, error) {
	query := s.db.WithContext(ctx).Model(&models.Record{}).Preload("Fields")

	// Narrow with a LIKE pre-filter where possible. SQLite LIKE is
	// case-insensitive for ASCII, so this only ever over-selects; the
	// predicate check below enforces case-sensitive containment.
	if pred.Value != "" {
		pattern := "%" + escapeLike(pred.Value) + "%"
		join := query.
			Joins("JOIN fields ON fields.record_id = records.id AND fields.deleted_at IS NULL").
			Distinct("records.*")
		switch pred.Mode {
		case models.MatchField:
			query = join.Where("fields.key = ? AND fields.value LIKE ? ESCAPE '\\'", pred.Key, pattern)
		case models.MatchRecord:
			query = join.Where("fields.value LIKE ? ESCAPE '\\'", pattern)
		}
	}

	var candidates []models.Record
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	records := candidates[:0]
	for i := range candidates {
		if pred.Matches(&candidates[i]) {
			records = append(records, candidates[i])
		}
	}
	return records, nil
}

func (s *SQLiteStore) GroupBy(ctx context.Context, key string) (map[string][]string, error) {
	type row struct {
		Value string
		Path  string
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.Field{}).
		Select("fields.value AS value, records.path AS path").
		Joins("JOIN records ON records.id = fields.record_id AND records.deleted_at IS NULL").
		Where("fields.key = ?", key).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for _, r := range rows {
		groups[r.Value] = append(groups[r.Value], r.Path)
	}
	return groups, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Record{}).Count(&count).Error
	return count, err
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `%`, `\%`)
	value = strings.ReplaceAll(value, `_`, `\_`)
	return value
}
