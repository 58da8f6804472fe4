package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Olenjan/makelist/core"
	"github.com/Olenjan/makelist/internal/logger"
	"github.com/Olenjan/makelist/internal/prompt"
)

var (
	cfgFile      string
	verbose      bool
	logFormat    string
	cliLogger    logr.Logger
	workspace    string
	manifestName string
	strictParens bool
	assumeYes    bool
	dryRun       bool
)

var rootCmd = &cobra.Command{
	Use:   "makelist",
	Short: "Makelist keeps CMakeLists.txt source lists in sync with the file tree",
	Long: `Makelist adds and removes source-file entries in the set() blocks of the
nearest CMakeLists.txt, watches for deletions of tracked files, and resolves
filenames mentioned in a manifest back to workspace files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cliLogger.IsZero() {
			cliLogger = logger.NewConsoleLogger(verbose, logFormat == "json")
		}
		ctx := logr.NewContext(context.Background(), cliLogger)
		cmd.SetContext(ctx)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.makelist.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose mode")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "json or text (default is text)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace root; ancestor search stops here")
	rootCmd.PersistentFlags().StringVar(&manifestName, "manifest-name", "", "manifest file name (default CMakeLists.txt)")
	rootCmd.PersistentFlags().BoolVar(&strictParens, "strict-parens", false, "balance nested parentheses when locating blocks")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer every prompt with its first option")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print a unified diff instead of writing the manifest")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Printf("Error binding verbose flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		fmt.Printf("Error binding log-format flag: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".makelist")
	}

	viper.AutomaticEnv()

	// Just read the config silently
	viper.ReadInConfig()

	logFormat = viper.GetString("log-format")
	verbose = viper.GetBool("verbose")
}

func LoggerFrom(ctx context.Context, keysAndValues ...interface{}) logr.Logger {
	if cliLogger.IsZero() {
		cliLogger = logger.NewConsoleLogger(verbose, logFormat == "json")
	}
	newLogger := cliLogger
	if ctx != nil {
		if l, err := logr.FromContext(ctx); err == nil {
			newLogger = l
		}
	}
	return newLogger.WithValues(keysAndValues...)
}

// loadConfig builds the explicit config object every command threads through,
// seeding workspace defaults on first use. Flags override file values.
func loadConfig(log logr.Logger) (core.Config, error) {
	cfg, err := core.EnsureWorkspaceConfig(log, workspace)
	if err != nil {
		return cfg, err
	}
	if manifestName != "" {
		cfg.ManifestName = manifestName
	}
	if strictParens {
		cfg.StrictNesting = true
	}
	return cfg, nil
}

func newEngine(log logr.Logger, cfg core.Config) *core.BlockEngine {
	engine := core.NewBlockEngine(log, cfg.ExtensionMapping).WithStrictNesting(cfg.StrictNesting)
	if dryRun {
		engine = engine.WithPreview(os.Stdout)
	}
	return engine
}

func newInteractor() core.Interactor {
	if assumeYes {
		return core.AssumeYes{}
	}
	return prompt.New()
}

// pickManifest resolves the candidate manifests for a target path and lets
// the user choose when several apply. Empty return means nothing was found
// or the picker was cancelled; both are normal outcomes.
func pickManifest(log logr.Logger, cfg core.Config, interactor core.Interactor, target string) (string, error) {
	locator := core.NewManifestLocator(log, cfg.ManifestName)
	manifests, err := locator.FindManifests(target, workspace)
	if err != nil {
		return "", err
	}
	if len(manifests) == 0 {
		fmt.Printf("No %s found between %s and the workspace root\n", cfg.ManifestName, target)
		return "", nil
	}
	if len(manifests) == 1 {
		return manifests[0], nil
	}
	idx := interactor.PickOne("Several manifests apply. Which one did you mean?", manifests)
	if idx < 0 {
		return "", nil
	}
	return manifests[idx], nil
}
