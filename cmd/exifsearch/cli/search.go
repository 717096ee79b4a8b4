package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/mover"
	"github.com/Confuzu/ExifData-Seach-and-Move/internal/search"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
)

func NewSearchCommand() *cobra.Command {
	var key string
	var value string
	var entireRecord bool
	var moveTo string

	cmd := &cobra.Command{
		Use:   "search <directory>...",
		Short: "Search indexed metadata by key/value",
		Long: `Search image files under the given directories whose metadata contains
the given value. By default only the named metadata field is checked;
with --entire-record the value is matched against all field values.
Files not yet indexed are extracted on the fly and added to the index.

With --move-to, matched files are relocated into the target directory
and the index is rewritten to their new location.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig("search")
			if err != nil {
				return err
			}

			if key == "" {
				key = cfg.Search.DefaultKey
			}
			pred := models.Predicate{Key: key, Value: value, Mode: models.MatchField}
			if entireRecord {
				pred.Mode = models.MatchRecord
			}

			ctx := cmd.Context()
			st := buildStore(ctx, cfg, logger)
			defer st.Close()

			sched := schedulerConfig(cfg, true)
			engine := search.NewEngine(st, buildExtractor(cfg), buildWalker(cfg), sched, logger)

			matches, stats, err := engine.Search(ctx, args, pred)
			if err != nil {
				return err
			}

			if moveTo == "" {
				for _, path := range matches {
					fmt.Println(path)
				}
				fmt.Printf("Search complete: %d processed, %d matched, %d skipped\n",
					stats.Processed, len(matches), stats.Skipped)
				return nil
			}

			outcomes, err := mover.New(st, sched, logger).MoveAll(ctx, matches, moveTo)
			if err != nil {
				return err
			}

			counts := make(map[mover.Status]int)
			for _, outcome := range outcomes {
				counts[outcome.Status]++
			}

			fmt.Printf("Search complete: %d processed, %d matched, %d skipped\n",
				stats.Processed, len(matches), stats.Skipped)
			fmt.Printf("Moved %d files to %s (%d move-failed, %d target-exists, %d index-stale, %d rewrite-failed)\n",
				counts[mover.Moved], moveTo,
				counts[mover.MoveFailed], counts[mover.TargetExists],
				counts[mover.IndexStale], counts[mover.RewriteFailed])
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "metadata key to search (default from config, normally Parameters)")
	cmd.Flags().StringVarP(&value, "value", "v", "", "substring the metadata must contain")
	cmd.Flags().BoolVar(&entireRecord, "entire-record", false, "match against all metadata fields instead of only --key")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "move matched files into this directory")
	cmd.MarkFlagRequired("value")

	return cmd
}
