package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLiteStore(SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))

	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStore_UpsertThenScanAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/images/%03d.png", i)
		err := st.Upsert(ctx, path, map[string]string{"Model": "test", "Seed": fmt.Sprint(i)})
		require.NoError(t, err)
	}

	records, err := st.Scan(ctx, models.MatchAll())
	require.NoError(t, err)
	assert.Len(t, records, n)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestSQLiteStore_UpsertReplacesFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, "/images/a.png", map[string]string{
		"Model": "old",
		"Seed":  "1",
	}))
	require.NoError(t, st.Upsert(ctx, "/images/a.png", map[string]string{
		"Model": "new",
	}))

	record, err := st.Get(ctx, "/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Model": "new"}, record.Metadata())

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStore_UpsertIdempotentContent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	metadata := map[string]string{"Model": "x", "Parameters": "a cat sitting"}
	require.NoError(t, st.Upsert(ctx, "/images/a.png", metadata))

	before, err := st.Get(ctx, "/images/a.png")
	require.NoError(t, err)

	require.NoError(t, st.Upsert(ctx, "/images/a.png", metadata))

	after, err := st.Get(ctx, "/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, before.Metadata(), after.Metadata())
}

func TestSQLiteStore_RewritePath(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	metadata := map[string]string{"Model": "x", "Parameters": "a cat sitting"}
	require.NoError(t, st.Upsert(ctx, "/images/old.png", metadata))

	require.NoError(t, st.RewritePath(ctx, "/images/old.png", "/sorted/new.png"))

	record, err := st.Get(ctx, "/sorted/new.png")
	require.NoError(t, err)
	assert.Equal(t, metadata, record.Metadata())

	_, err = st.Get(ctx, "/images/old.png")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLiteStore_RewritePathMissing(t *testing.T) {
	st := newTestStore(t)

	err := st.RewritePath(context.Background(), "/images/ghost.png", "/sorted/ghost.png")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLiteStore_ScanMatchModes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, "/images/cat.png", map[string]string{
		"Parameters": "a cat sitting",
		"Seed":       "42",
	}))
	require.NoError(t, st.Upsert(ctx, "/images/dog.png", map[string]string{
		"Parameters": "a dog running",
		"Seed":       "123",
	}))

	// Named-field mode only checks the requested key
	records, err := st.Scan(ctx, models.Predicate{Key: "Parameters", Value: "cat", Mode: models.MatchField})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/images/cat.png", records[0].Path)

	// Entire-record mode matches any field, here the seed
	records, err = st.Scan(ctx, models.Predicate{Key: "Parameters", Value: "123", Mode: models.MatchRecord})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/images/dog.png", records[0].Path)

	// Substring containment is case-sensitive
	records, err = st.Scan(ctx, models.Predicate{Key: "Parameters", Value: "CAT", Mode: models.MatchField})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_ScanLikeWildcardsLiteral(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, "/images/a.png", map[string]string{"Parameters": "100% cotton"}))
	require.NoError(t, st.Upsert(ctx, "/images/b.png", map[string]string{"Parameters": "100 degrees"}))

	records, err := st.Scan(ctx, models.Predicate{Key: "Parameters", Value: "100%", Mode: models.MatchField})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/images/a.png", records[0].Path)
}

func TestSQLiteStore_GroupBy(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, "/images/a.png", map[string]string{"Model": "x"}))
	require.NoError(t, st.Upsert(ctx, "/images/b.png", map[string]string{"Model": "x"}))
	require.NoError(t, st.Upsert(ctx, "/images/c.png", map[string]string{"Model": "y"}))
	require.NoError(t, st.Upsert(ctx, "/images/d.png", map[string]string{"Seed": "9"}))

	groups, err := st.GroupBy(ctx, "Model")
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{"/images/a.png", "/images/b.png"}, groups["x"])
	assert.ElementsMatch(t, []string{"/images/c.png"}, groups["y"])
}

func TestSQLiteStore_ExistingPaths(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, "/images/a.png", map[string]string{"Model": "x"}))

	existing, err := st.ExistingPaths(ctx, []string{"/images/a.png", "/images/b.png"})
	require.NoError(t, err)
	assert.True(t, existing["/images/a.png"])
	assert.False(t, existing["/images/b.png"])
}

func TestSQLiteStore_ConcurrentUpserts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	const n = 50
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- st.Upsert(ctx, fmt.Sprintf("/images/%03d.png", i), map[string]string{"Seed": fmt.Sprint(i)})
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}
