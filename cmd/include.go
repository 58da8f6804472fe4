package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Olenjan/makelist/core"
)

var includeCmd = &cobra.Command{
	Use:   "include",
	Short: "Manage include_directories() entries",
}

var includeAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Add a directory to include_directories()",
	Long: `Add inserts a ${CMAKE_CURRENT_SOURCE_DIR}-relative entry into the
include_directories() block of the nearest manifest, creating the block when
it does not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInclude(cmd, args[0], true)
	},
}

var includeRemoveCmd = &cobra.Command{
	Use:   "remove <dir>",
	Short: "Remove a directory from include_directories()",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInclude(cmd, args[0], false)
	},
}

func runInclude(cmd *cobra.Command, dir string, add bool) error {
	log := LoggerFrom(cmd.Context())
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	interactor := newInteractor()
	manifest, err := pickManifest(log, cfg, interactor, dir)
	if err != nil || manifest == "" {
		return err
	}

	engine := newEngine(log, cfg)
	var outcome core.Outcome
	if add {
		outcome, err = engine.AddIncludeDirectory(manifest, dir)
	} else {
		outcome, err = engine.RemoveIncludeDirectory(manifest, dir)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", manifest, outcome)
	return nil
}

func init() {
	includeCmd.AddCommand(includeAddCmd)
	includeCmd.AddCommand(includeRemoveCmd)
	rootCmd.AddCommand(includeCmd)
}
