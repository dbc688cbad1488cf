// slidefigs-tui is an interactive browser over the figures and their
// render history.
//
// Usage:
//
//	slidefigs-tui [flags]
//
// Flags:
//
//	--db       History database (default: ~/.slidefigs/history.db)
//	--output   Directory renders are written to
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/config"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/render"
	"github.com/Mr-Dark-debug/slidefigs/internal/tui"
)

var (
	configPath string
	dbPath     string
	outputDir  string
)

var rootCmd = &cobra.Command{
	Use:          "slidefigs-tui",
	Short:        "Browse and render the slide figures interactively",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", config.DefaultFile, "Config file (YAML)")
	f.StringVar(&dbPath, "db", "", "History database path (default from config)")
	f.StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := canvas.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	store, err := database.OpenFile(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history at %s: %w", cfg.DBPath, err)
	}
	defer store.Close()

	// No logger: log lines would tear the alternate screen.
	model := tui.NewModel(store, render.New(store, nil), render.Request{
		OutputDir: cfg.OutputDir,
		Options:   canvas.Options{Format: format, DPI: cfg.DPI},
		Jobs:      cfg.Jobs,
		Metadata:  map[string]string{"source": "tui"},
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
