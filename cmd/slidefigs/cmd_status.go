package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/gallery"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gallery server and latest run status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		url := fmt.Sprintf("http://%s/api/metrics", cfg.ListenAddr)

		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			fmt.Fprintln(out, "Gallery server is not running.")
			fmt.Fprintf(out, "  Start it with: slidefigs-server\n")
			fmt.Fprintf(out, "  (tried: %s)\n", url)
		} else {
			defer resp.Body.Close()
			var m gallery.Metrics
			if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
				return fmt.Errorf("decoding gallery metrics: %w", err)
			}
			fmt.Fprintln(out, "Gallery server is running.")
			fmt.Fprintf(out, "  Figures served:  %d\n", m.FiguresServed)
			fmt.Fprintf(out, "  Renders:         %d\n", m.Renders)
			fmt.Fprintf(out, "  Cache hits:      %d\n", m.CacheHits)
			fmt.Fprintf(out, "  Errors:          %d\n", m.ErrorCount)
			fmt.Fprintf(out, "  Uptime:          %s\n", time.Duration(m.Uptime)*time.Second)
		}
		fmt.Fprintln(out)

		store, ok, err := openExistingStore()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		defer store.Close()

		runs, err := store.QueryRuns(database.RunFilter{Limit: 1})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		r := runs[0]
		stats, err := store.GetRunStats(r.RunID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Latest run %s (%s)\n", r.RunID, r.Status)
		fmt.Fprintf(out, "  Started:  %s\n", timeutil.FormatTimestampFull(r.StartedAt))
		fmt.Fprintf(out, "  Output:   %s\n", r.OutputDir)
		fmt.Fprintf(out, "  Figures:  %d ok, %d failed\n", stats.Succeeded, stats.Failed)
		fmt.Fprintf(out, "  Size:     %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
		fmt.Fprintf(out, "  Took:     %s\n", timeutil.FormatDuration(stats.TotalDurationMs))
		return nil
	},
}
