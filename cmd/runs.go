package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored forecast runs, or show one run's wells",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			return showRun(cmd, st, args[0])
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, model.RunFilter{Limit: limit})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSOURCE\tSTATUS\tWELLS\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.Source, r.Status, r.Wells, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func showRun(cmd *cobra.Command, st store.Store, runID string) error {
	forecasts, err := st.ListWellForecasts(cmd.Context(), runID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WELL\tMODEL\tRMSE\tMAE\tCAP\tBASE\tCAPPED")
	for _, fc := range forecasts {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.1f\t%.0f\t%.0f\n",
			fc.Well, fc.Fit.Model.Kind, fc.Backtest.RMSE, fc.Backtest.MAE,
			fc.Scenario.Cap, fc.Scenario.BaseCumulative, fc.Scenario.CappedCumulative)
	}
	return tw.Flush()
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
