package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Olenjan/makelist/core"
)

var addCmd = &cobra.Command{
	Use:   "add <file> [file...]",
	Short: "Add source files to the nearest manifest",
	Long: `Add inserts the selected files into the set() block their extension maps
to, in the nearest enclosing CMakeLists.txt. Missing blocks are created after
confirmation.`,
	Args: cobra.MinimumNArgs(1),
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
		result, missing := engine.AddFiles(manifest, managed)

		if len(missing) > 0 {
			groups := make([]string, 0, len(missing))
			for group := range missing {
				groups = append(groups, group)
			}
			sort.Strings(groups)

			question := fmt.Sprintf("%s has no set(%s) block. Create it?",
				manifest, strings.Join(groups, "), set("))
			if interactor.Confirm(question, "Create", "Cancel") == "Create" {
				if err := engine.CreateBlocks(manifest, groups); err != nil {
					return err
				}
				for _, group := range groups {
					retried, stillMissing := engine.AddFiles(manifest, missing[group])
					result.Added = append(result.Added, retried.Added...)
					result.AlreadyPresent = append(result.AlreadyPresent, retried.AlreadyPresent...)
					result.Failed = append(result.Failed, retried.Failed...)
					for _, files := range stillMissing {
						result.Failed = append(result.Failed, files...)
					}
				}
			} else {
				for _, group := range groups {
					result.NotFound = append(result.NotFound, missing[group]...)
				}
				log.Info("Block creation declined", "groups", groups)
			}
		}

		fmt.Printf("%s: %s\n", manifest, result.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
