package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_Match(t *testing.T) {
	w := NewWalker(nil)

	assert.True(t, w.Match("a.png"))
	assert.True(t, w.Match("/some/dir/b.JPG"))
	assert.True(t, w.Match("c.JPEG"))
	assert.False(t, w.Match("d.gif"))
	assert.False(t, w.Match("e.txt"))
}

func TestWalker_Walk(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))

	for _, name := range []string{"a.png", "b.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.jpeg"), []byte("x"), 0644))

	w := NewWalker(nil)

	// Overlapping inputs still yield each file once, sorted
	paths, err := w.Walk([]string{dir, sub})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(sub, "c.jpeg"),
	}, paths)
}

func TestWalker_CustomPatterns(t *testing.T) {
	w := NewWalker([]string{"*.webp"})

	assert.True(t, w.Match("a.webp"))
	assert.False(t, w.Match("a.png"))
}
