package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/config"
	"github.com/Confuzu/ExifData-Seach-and-Move/internal/search"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/extract"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scan"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scheduler"
)

type fakeExtractor struct {
	metadata map[string]map[string]string
}

func (f *fakeExtractor) Check() error { return nil }

func (f *fakeExtractor) Extract(ctx context.Context, path string) (map[string]string, error) {
	meta, ok := f.metadata[filepath.Base(path)]
	if !ok {
		return nil, extract.ErrUnreadableFile
	}
	return meta, nil
}

func newTestAggregator(t *testing.T, metadata map[string]map[string]string) *Aggregator {
	t.Helper()

	logger := log.NewLoggerService("test", config.LogConfig{Level: "FATAL", TimeFormat: time.RFC3339})
	st := store.NewMemoryStore()
	engine := search.NewEngine(st, &fakeExtractor{metadata: metadata}, scan.NewWalker(nil),
		scheduler.Config{BatchSize: 10, Workers: 4}, logger)
	return NewAggregator(st, engine, logger)
}

func TestAggregate_GroupsByModel(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	aggregator := newTestAggregator(t, map[string]map[string]string{
		"a.png": {"Model": "x"},
		"b.png": {"Model": "x"},
		"c.png": {"Model": "y"},
	})

	groups, err := aggregator.Aggregate(context.Background(), []string{dir}, "Model")
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, groups["x"])
	assert.ElementsMatch(t, []string{filepath.Join(dir, "c.png")}, groups["y"])
}

func TestAggregate_ExcludesRecordsWithoutKey(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	aggregator := newTestAggregator(t, map[string]map[string]string{
		"a.png": {"Model": "x"},
		"b.png": {"Seed": "7"},
	})

	groups, err := aggregator.Aggregate(context.Background(), []string{dir}, "Model")
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png")}, groups["x"])
}

func TestAggregate_CivitaiFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0644))

	aggregator := newTestAggregator(t, map[string]map[string]string{
		"a.png": {
			"Parameters": `a cat, Steps: 20, Civitai resources: [{"type":"checkpoint","modelName":"DreamShaper"}], Seed: 1`,
		},
	})

	groups, err := aggregator.Aggregate(context.Background(), []string{dir}, "Model")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png")}, groups["DreamShaper"])
}

func TestCivitaiModel(t *testing.T) {
	assert.Equal(t, "DreamShaper",
		civitaiModel(`Civitai resources: [{"modelName": "DreamShaper"}]`))
	assert.Equal(t, "",
		civitaiModel("no resources here"))
	assert.Equal(t, "",
		civitaiModel("Civitai resources: [not json"))
	assert.Equal(t, "Second",
		civitaiModel(`Civitai resources: [{"type":"lora"},{"modelName":"Second"}]`))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, map[string][]string{
		"y": {"/images/c.png"},
		"x": {"/images/b.png", "/images/a.png"},
	})
	require.NoError(t, err)

	expected := `Model information for Image files:

Model: x
Files: 2
 - /images/a.png
 - /images/b.png

Model: y
Files: 1
 - /images/c.png
`
	assert.Equal(t, expected, buf.String())
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil))
	assert.Contains(t, buf.String(), "No Image files with model information found")
}
