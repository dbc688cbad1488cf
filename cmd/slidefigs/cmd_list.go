package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered figures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := canvas.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		all := figures.All()

		if listJSON {
			type entry struct {
				ID     string `json:"id"`
				Slide  int    `json:"slide"`
				Title  string `json:"title"`
				File   string `json:"file"`
				Width  int    `json:"width_px"`
				Height int    `json:"height_px"`
			}
			out := make([]entry, 0, len(all))
			for _, f := range all {
				w, h := f.PixelSize(cfg.DPI)
				out = append(out, entry{f.ID, f.Slide, f.Title, f.File(format), w, h})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLIDE\tID\tFILE\tPIXELS\tTITLE")
		for _, f := range all {
			w, h := f.PixelSize(cfg.DPI)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%dx%d\t%s\n", f.Slide, f.ID, f.File(format), w, h, f.Title)
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
}
