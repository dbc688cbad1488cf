package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/analysis"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Analyze a recorded run (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, ok, err := openExistingStore()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no recorded runs in %s", cfg.DBPath)
		}
		defer store.Close()

		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}
		analyzer := analysis.NewAnalyzer(store)
		report, err := analyzer.FullAnalysis(runID)
		if err != nil {
			return err
		}

		if reportJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprint(cmd.OutOrStdout(), analyzer.FormatReport(report))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print JSON instead of markdown")
}
