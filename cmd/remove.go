package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Olenjan/makelist/core"
)

var removeCmd = &cobra.Command{
	Use:     "remove <file> [file...]",
	Aliases: []string{"rm"},
	Short:   "Remove source files from the nearest manifest",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := LoggerFrom(cmd.Context())
		cfg, err := loadConfig(log)
		if err != nil {
			return err
		}

		managed, err := core.FilterManaged(args, cfg.ExtensionMapping)
		if err != nil {
			return err
		}

		interactor := newInteractor()
		manifest, err := pickManifest(log, cfg, interactor, managed[0])
		if err != nil || manifest == "" {
			return err
		}

		engine := newEngine(log, cfg)
		result := engine.RemoveFiles(manifest, managed)
		fmt.Printf("%s: %s\n", manifest, result.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
