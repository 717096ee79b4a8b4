package report

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/search"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
)

// DefaultGroupKey is the metadata field identifying the generator model.
const DefaultGroupKey = "Model"

// civitaiMarker prefixes an embedded JSON resource list that names the
// model when no Model field is present.
const civitaiMarker = "Civitai resources:"

// Aggregator groups indexed records by a metadata field, typically the
// generator model, limited to a set of directories.
type Aggregator struct {
	store  store.IndexStore
	engine *search.Engine
	log    log.LoggerService
}

func NewAggregator(st store.IndexStore, engine *search.Engine, logger log.LoggerService) *Aggregator {
	return &Aggregator{
		store:  st,
		engine: engine,
		log:    logger,
	}
}

// Aggregate returns the files under dirs grouped by their value for
// groupKey. Files lacking the key are excluded, except that for the
// Model key a fallback parses the model name out of an embedded
// Civitai resource list, as some generators emit.
func (a *Aggregator) Aggregate(ctx context.Context, dirs []string, groupKey string) (map[string][]string, error) {
	// A match-all search indexes anything the store has not seen yet
	// and yields the indexed in-scope path set.
	inScopePaths, _, err := a.engine.Search(ctx, dirs, models.MatchAll())
	if err != nil {
		return nil, err
	}

	inScope := make(map[string]bool, len(inScopePaths))
	for _, path := range inScopePaths {
		inScope[path] = true
	}

	grouped, err := a.store.GroupBy(ctx, groupKey)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for value, paths := range grouped {
		for _, path := range paths {
			if inScope[path] {
				groups[value] = append(groups[value], path)
				delete(inScope, path)
			}
		}
	}

	if groupKey == DefaultGroupKey && len(inScope) > 0 {
		if err := a.addCivitaiFallback(ctx, inScope, groups); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// addCivitaiFallback resolves a model name for in-scope records that
// lack a Model field but carry a Civitai resource list.
func (a *Aggregator) addCivitaiFallback(ctx context.Context, remaining map[string]bool, groups map[string][]string) error {
	records, err := a.store.Scan(ctx, models.MatchAll())
	if err != nil {
		return err
	}

	for i := range records {
		record := &records[i]
		if !remaining[record.Path] {
			continue
		}
		for _, field := range record.Fields {
			if model := civitaiModel(field.Value); model != "" {
				groups[model] = append(groups[model], record.Path)
				delete(remaining, record.Path)
				break
			}
		}
	}
	return nil
}

// civitaiModel extracts the first modelName from an embedded
// "Civitai resources: [...]" JSON list, or "" when absent.
func civitaiModel(value string) string {
	start := strings.Index(value, civitaiMarker)
	if start < 0 {
		return ""
	}

	raw := value[start+len(civitaiMarker):]
	end := strings.Index(raw, "]")
	if end < 0 {
		return ""
	}
	raw = strings.TrimSpace(raw[:end+1])

	var resources []map[string]any
	if err := json.Unmarshal([]byte(raw), &resources); err != nil {
		return ""
	}

	for _, resource := range resources {
		if name, ok := resource["modelName"].(string); ok {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return ""
}
