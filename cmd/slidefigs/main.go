// slidefigs renders the slide figures about workplace microaggressions and
// keeps a history of every render.
//
// Usage:
//
//	slidefigs <command> [flags]
//
// Commands:
//
//	render    Render figures into the output directory
//	list      List the registered figures
//	history   Show recorded runs or one figure's renders
//	report    Analyze a recorded run
//	status    Show gallery server and latest run status
//	init      Write the effective configuration to a file
//	version   Print version information
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mr-Dark-debug/slidefigs/internal/config"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/logging"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "slidefigs",
	Short: "Render the workplace microaggressions slide figures",
	Long: `slidefigs draws the static figures used in the workplace microaggressions
slide deck: diagrams, timelines and infographics, one image per slide.

Settings come from slidefigs.yaml, SLIDEFIGS_* environment variables and
flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log, verbose)
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "slidefigs v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the history database named in the config.
func openStore() (*database.DBService, error) {
	store, err := database.OpenFile(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening history at %s: %w", cfg.DBPath, err)
	}
	return store, nil
}

// openExistingStore opens the history database for reading. It reports
// false without creating anything when no history has been recorded yet.
func openExistingStore() (*database.DBService, bool, error) {
	if _, err := os.Stat(cfg.DBPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("opening history at %s: %w", cfg.DBPath, err)
	}
	store, err := openStore()
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
