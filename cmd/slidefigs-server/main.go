// slidefigs-server serves the slide figures and their render history
// over HTTP.
//
// Usage:
//
//	slidefigs-server [flags]
//
// Flags:
//
//	--listen   TCP address to serve on (default: 127.0.0.1:7711)
//	--db       History database; "" serves figures only
//	--format   Default image format (png or svg)
//	--dpi      Default resolution
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/config"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/gallery"
	"github.com/Mr-Dark-debug/slidefigs/internal/logging"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "slidefigs-server",
	Short:        "Serve the slide figures over HTTP",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", config.DefaultFile, "Config file (YAML)")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	f.String("listen", "", "TCP listen address (default from config)")
	f.String("db", "", "History database path (default from config)")
	f.String("format", "", "Default image format: png or svg")
	f.Float64("dpi", 0, "Default resolution in dots per inch")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr, _ = flags.GetString("listen")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
		cfg.Record = cfg.DBPath != ""
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("dpi") {
		cfg.DPI, _ = flags.GetFloat64("dpi")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	format, err := canvas.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	var store database.Store
	if cfg.Record {
		db, err := database.OpenFile(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening history at %s: %w", cfg.DBPath, err)
		}
		defer db.Close()
		store = db
	}

	server := gallery.NewServer(gallery.Config{
		ListenAddr: cfg.ListenAddr,
		Options:    canvas.Options{Format: format, DPI: cfg.DPI},
	}, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start gallery: %w", err)
	}

	fmt.Println()
	fmt.Println("  SLIDEFIGS GALLERY")
	fmt.Println("  Workplace microaggressions slide figures")
	fmt.Println()
	fmt.Printf("  Figures: http://%s/api/figures\n", server.Addr())
	fmt.Printf("  Metrics: http://%s/metrics\n", server.Addr())
	if store != nil {
		fmt.Printf("  History: %s\n", cfg.DBPath)
	}
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n  Shutting down gracefully...")
	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	m := server.Metrics()
	fmt.Printf("  Served %d figures (%d renders, %d cache hits).\n", m.FiguresServed, m.Renders, m.CacheHits)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
