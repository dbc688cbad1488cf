package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/render"
)

var renderFlags struct {
	output   string
	format   string
	dpi      float64
	jobs     int
	noRecord bool
}

var renderCmd = &cobra.Command{
	Use:   "render [figure...]",
	Short: "Render figures into the output directory",
	Long: `Render the named figures, or every figure when none is named, and list
the files produced as "Slide N: <file>". Figure IDs are shown by 'slidefigs list'.`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.output, "output", "o", "", "Output directory (default from config)")
	f.StringVarP(&renderFlags.format, "format", "f", "", "Image format: png or svg")
	f.Float64Var(&renderFlags.dpi, "dpi", 0, "Resolution in dots per inch")
	f.IntVarP(&renderFlags.jobs, "jobs", "j", 0, "Figures rendered concurrently")
	f.BoolVar(&renderFlags.noRecord, "no-record", false, "Do not record the run in the history database")
}

// applyRenderFlags layers explicitly set flags over the loaded config.
func applyRenderFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = renderFlags.output
	}
	if flags.Changed("format") {
		cfg.Format = renderFlags.format
	}
	if flags.Changed("dpi") {
		cfg.DPI = renderFlags.dpi
	}
	if flags.Changed("jobs") {
		cfg.Jobs = renderFlags.jobs
	}
	if renderFlags.noRecord {
		cfg.Record = false
	}
	return cfg.Validate()
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := applyRenderFlags(cmd); err != nil {
		return err
	}
	format, err := canvas.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	var store database.Store
	if cfg.Record {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := render.New(store, logger).Run(ctx, render.Request{
		Figures:   args,
		OutputDir: cfg.OutputDir,
		Options:   canvas.Options{Format: format, DPI: cfg.DPI},
		Jobs:      cfg.Jobs,
		Metadata: map[string]string{
			"jobs":    strconv.Itoa(cfg.Jobs),
			"version": Version,
		},
	})
	if sum != nil {
		if werr := sum.WriteListing(cmd.OutOrStdout()); werr != nil {
			return werr
		}
		for _, res := range sum.Results {
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Slide %d: %s failed: %v\n", res.Slide, res.File, res.Err)
			}
		}
	}
	return err
}
