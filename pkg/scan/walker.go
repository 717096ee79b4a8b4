package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns matches the image formats carrying generation metadata.
var DefaultPatterns = []string{"*.png", "*.jpg", "*.jpeg"}

// Walker collects the files under a set of directories whose base name
// matches one of the configured glob patterns. Matching is
// case-insensitive on the file name.
type Walker struct {
	patterns []string
}

func NewWalker(patterns []string) *Walker {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	normalized := make([]string, len(patterns))
	for i, p := range patterns {
		normalized[i] = strings.ToLower(p)
	}
	return &Walker{patterns: normalized}
}

// Match reports whether the file name matches any configured pattern.
func (w *Walker) Match(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, pattern := range w.patterns {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Walk returns the sorted, deduplicated absolute paths of all matching
// files under the given directories.
func (w *Walker) Walk(dirs []string) ([]string, error) {
	seen := make(map[string]bool)

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory %q: %w", dir, err)
		}

		err = filepath.WalkDir(absDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if w.Match(entry.Name()) {
				seen[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %q: %w", absDir, err)
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
