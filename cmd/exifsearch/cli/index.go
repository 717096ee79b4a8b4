package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/indexer"
)

func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <directory>...",
		Short: "Index image metadata into the store",
		Long:  "Walks the given directories and extracts the embedded metadata of every matching image into the index store. Files already indexed are re-extracted and replaced.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig("index")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st := buildStore(ctx, cfg, logger)
			defer st.Close()

			ix := indexer.New(st, buildExtractor(cfg), buildWalker(cfg), schedulerConfig(cfg, true), logger)

			summary, err := ix.IndexDirectories(ctx, args)
			if err != nil {
				return err
			}

			fmt.Printf("Indexing complete: %d processed, %d indexed, %d skipped\n",
				summary.Processed, summary.Indexed, summary.Skipped)
			return nil
		},
	}

	return cmd
}
