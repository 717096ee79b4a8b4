package store

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
)

// MemoryStore implements IndexStore with an in-memory btree keyed by
// path. It backs a single invocation when no durable store is
// configured or the SQLite database cannot be opened; nothing survives
// process exit.
type MemoryStore struct {
	mutex   sync.RWMutex
	records *btree.Map[string, *models.Record]
	nextID  uint
}

// NewMemoryStore creates a new transient index store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: btree.NewMap[string, *models.Record](32),
	}
}

func (s *MemoryStore) Connect(ctx context.Context) error { return nil }
func (s *MemoryStore) Close() error                      { return nil }
func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (s *MemoryStore) Health(ctx context.Context) error  { return nil }

func (s *MemoryStore) Upsert(ctx context.Context, path string, metadata map[string]string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	record := &models.Record{
		ID:          s.nextID,
		Path:        path,
		LastIndexed: time.Now().UTC(),
		Fields:      make([]models.Field, 0, len(metadata)),
	}
	for key, value := range metadata {
		record.Fields = append(record.Fields, models.Field{
			RecordID: record.ID,
			Key:      key,
			Value:    value,
		})
	}

	s.records.Set(path, record)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, path string) (*models.Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.records.Get(path)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyRecord(record), nil
}

func (s *MemoryStore) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	existing := make(map[string]bool, len(paths))
	for _, p := range paths {
		if _, ok := s.records.Get(p); ok {
			existing[p] = true
		}
	}
	return existing, nil
}

func (s *MemoryStore) RewritePath(ctx context.Context, oldPath, newPath string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, ok := s.records.Get(oldPath)
	if !ok {
		return ErrRecordNotFound
	}

	s.records.Delete(oldPath)
	record.Path = newPath
	s.records.Set(newPath, record)
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, pred models.Predicate) ([]models.Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var records []models.Record
	s.records.Scan(func(path string, record *models.Record) bool {
		if pred.Matches(record) {
			records = append(records, *copyRecord(record))
		}
		return true
	})
	return records, nil
}

func (s *MemoryStore) GroupBy(ctx context.Context, key string) (map[string][]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	groups := make(map[string][]string)
	s.records.Scan(func(path string, record *models.Record) bool {
		if value, ok := record.Field(key); ok {
			groups[value] = append(groups[value], path)
		}
		return true
	})
	return groups, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return int64(s.records.Len()), nil
}

func copyRecord(record *models.Record) *models.Record {
	clone := *record
	clone.Fields = make([]models.Field, len(record.Fields))
	copy(clone.Fields, record.Fields)
	return &clone
}
