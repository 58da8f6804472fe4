package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Olenjan/makelist/core"
	"github.com/Olenjan/makelist/internal/watchfs"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and prune deleted files from manifests",
	Long: `Watch observes deletions of tracked files under the workspace root,
coalesces bursts into one batch, and after confirmation removes the stale
entries from the nearest manifest. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := LoggerFrom(cmd.Context())
		cfg, err := loadConfig(log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source, err := watchfs.New(log, workspace)
		if err != nil {
			return err
		}
		defer source.Close()

		locator := core.NewManifestLocator(log, cfg.ManifestName)
		watcher := core.NewChangeWatcher(log, newEngine(log, cfg), locator,
			newInteractor(), workspace, cfg.ManagedExtensions)

		log.Info("Watching for deletions", "root", workspace,
			"pattern", core.GlobForExtensions(cfg.ManagedExtensions))

		go source.Run(ctx)
		watcher.Run(ctx, source.Events())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
