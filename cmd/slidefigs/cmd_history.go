package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

var historyFlags struct {
	limit  int
	status string
}

var historyCmd = &cobra.Command{
	Use:   "history [figure]",
	Short: "Show recorded runs or one figure's renders",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, ok, err := openExistingStore()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		defer store.Close()

		if len(args) == 1 {
			return printFigureHistory(cmd, store, args[0])
		}
		return printRuns(cmd, store)
	},
}

func printRuns(cmd *cobra.Command, store database.Store) error {
	filter := database.RunFilter{Limit: historyFlags.limit}
	if historyFlags.status != "" {
		filter.Status = &historyFlags.status
	}
	runs, err := store.QueryRuns(filter)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	now := time.Now()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tFIGURES\tSIZE\tOUTPUT")
	for _, r := range runs {
		stats, err := store.GetRunStats(r.RunID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			shortID(r.RunID), timeutil.RelativeTime(r.StartedAt, now), r.Status,
			stats.Succeeded, stats.Figures, humanize.Bytes(uint64(stats.TotalBytes)), r.OutputDir)
	}
	return tw.Flush()
}

func printFigureHistory(cmd *cobra.Command, store database.Store, id string) error {
	fig, err := figures.Lookup(id)
	if err != nil {
		return err
	}
	arts, err := store.FigureHistory(fig.ID, historyFlags.limit)
	if err != nil {
		return err
	}
	if len(arts) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has never been rendered.\n", fig.ID)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tRUN\tSTATUS\tSIZE\tSHA256\tTOOK")
	for _, a := range arts {
		sha := a.SHA256
		if len(sha) > 12 {
			sha = sha[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			timeutil.FormatTimestampFull(a.CreatedAt), shortID(a.RunID), a.Status,
			humanize.Bytes(uint64(a.Bytes)), sha, timeutil.FormatDuration(a.DurationMs))
	}
	return tw.Flush()
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum entries")
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "Only runs with this status: running, completed, failed")
}
