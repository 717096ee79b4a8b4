package cli

import (
	"github.com/spf13/cobra"

	"github.com/Confuzu/ExifData-Seach-and-Move/internal/indexer"
	"github.com/Confuzu/ExifData-Seach-and-Move/internal/watch"
)

func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <directory>...",
		Short: "Keep the index fresh as new images appear",
		Long:  "Watches the given directories and incrementally indexes image files as they are created or modified, until interrupted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig("watch")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st := buildStore(ctx, cfg, logger)
			defer st.Close()

			walker := buildWalker(cfg)
			ix := indexer.New(st, buildExtractor(cfg), walker, schedulerConfig(cfg, false), logger)

			return watch.NewWatcher(cfg, ix, walker, logger).Serve(ctx, args)
		},
	}

	return cmd
}
