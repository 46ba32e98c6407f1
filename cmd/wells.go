package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/volve-research/forecast-cli/internal/flow"
)

var wellsCmd = &cobra.Command{
	Use:   "wells",
	Short: "List wells in a production file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		sheet, _ := cmd.Flags().GetString("sheet")

		series, err := loadSeries(input, sheet)
		if err != nil {
			return err
		}

		wells := make([]string, 0, len(series))
		for w := range series {
			wells = append(wells, w)
		}
		sort.Strings(wells)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WELL\tRECORDS\tFLOWING\tFIRST\tLAST")
		for _, well := range wells {
			records := series[well]
			flowing := flow.Filter(records, cfg.DCA.HoursFloor)
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
				well, len(records), len(flowing),
				records[0].Date.Format("2006-01-02"),
				records[len(records)-1].Date.Format("2006-01-02"),
			)
		}
		return tw.Flush()
	},
}

func init() {
	wellsCmd.Flags().String("input", "", "daily production file (.csv or .xlsx)")
	wellsCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	_ = wellsCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(wellsCmd)
}
