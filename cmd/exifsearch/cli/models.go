package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/report"
	"github.com/Confuzu/ExifData-Seach-and-Move/internal/search"
)

func NewModelsCommand() *cobra.Command {
	var key string
	var output string

	cmd := &cobra.Command{
		Use:   "models <directory>...",
		Short: "Report which generator model produced which files",
		Long:  "Groups the indexed image files under the given directories by their generator model and writes a report with the file count and paths per model.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig("models")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st := buildStore(ctx, cfg, logger)
			defer st.Close()

			engine := search.NewEngine(st, buildExtractor(cfg), buildWalker(cfg), schedulerConfig(cfg, true), logger)
			aggregator := report.NewAggregator(st, engine, logger)

			groups, err := aggregator.Aggregate(ctx, args, key)
			if err != nil {
				return err
			}

			total := 0
			for _, paths := range groups {
				total += len(paths)
			}
			fmt.Printf("Found %d unique models across %d files.\n", len(groups), total)

			if output == "-" {
				return report.Render(os.Stdout, groups)
			}

			if output == "" {
				dirName := filepath.Base(filepath.Clean(args[0]))
				output = fmt.Sprintf("%s.%s.txt", time.Now().Format("2006-01-02_1504"), dirName)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create report file: %w", err)
			}
			defer file.Close()

			if err := report.Render(file, groups); err != nil {
				return err
			}
			fmt.Printf("Results saved to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", report.DefaultGroupKey, "metadata field to group by")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report file path ('-' for stdout, default timestamped file)")

	return cmd
}
