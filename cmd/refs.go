package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Olenjan/makelist/core"
)

var refsCmd = &cobra.Command{
	Use:   "refs [manifest]",
	Short: "List file references found in a manifest",
	Long: `Refs scans every declaration block of a manifest for quoted filenames and
resolves each against the workspace. Ambiguous names list all candidates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := LoggerFrom(cmd.Context())
		cfg, err := loadConfig(log)
		if err != nil {
			return err
		}

		manifest := ""
		if len(args) == 1 {
			manifest = args[0]
		} else {
			manifest, err = pickManifest(log, cfg, newInteractor(), ".")
			if err != nil || manifest == "" {
				return err
			}
		}

		data, err := os.ReadFile(manifest)
		if err != nil {
			return fmt.Errorf("error reading manifest %s: %w", manifest, err)
		}

		resolver := core.NewReferenceResolver(log, workspace).WithStrictNesting(cfg.StrictNesting)
		refs, err := resolver.Resolve(string(data))
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("No resolvable file references found")
			return nil
		}
		for _, ref := range refs {
			if len(ref.Targets) == 1 {
				fmt.Printf("%6d  %-30s -> %s\n", ref.Offset, ref.Token, ref.Targets[0])
			} else {
				fmt.Printf("%6d  %-30s -> %d candidates: %s\n",
					ref.Offset, ref.Token, len(ref.Targets), strings.Join(ref.Targets, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
}
