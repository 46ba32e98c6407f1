package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/backtest"
	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/flow"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Score decline-curve forecasts on a chronological holdout",
	Long: `Splits each well's flowing samples into train/test by time (never
randomly), refits on train, and reports forecast error on the held-out
tail alongside a naive last-value baseline.

Examples:
  backtest --input volve_daily.csv
  backtest --input volve_daily.csv --well "NO 15/9-F-14 H" --holdout 120`,
	RunE: runBacktest,
}

func init() {
	f := backtestCmd.Flags()
	f.String("input", "", "daily production file (.csv or .xlsx)")
	f.String("sheet", "", "XLSX sheet name (default: first sheet)")
	f.String("well", "", "backtest a single well")
	f.Int("holdout", 0, "holdout samples (overrides config)")
	_ = backtestCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	sheet, _ := flags.GetString("sheet")
	wellFilter, _ := flags.GetString("well")

	opts := backtest.Options{
		Holdout: cfg.Backtest.Holdout,
		Fit: dca.FitOptions{
			MinSamples:    cfg.DCA.MinSamples,
			MaxIterations: cfg.DCA.MaxIterations,
		},
	}
	if v, _ := flags.GetInt("holdout"); v > 0 {
		opts.Holdout = v
	}

	series, err := loadSeries(input, sheet)
	if err != nil {
		return err
	}

	type row struct {
		well string
		res  *backtest.Result
	}
	var rows []row
	for well, records := range series {
		if wellFilter != "" && well != wellFilter {
			continue
		}
		samples := flow.Filter(records, cfg.DCA.HoursFloor)
		res, err := backtest.Run(samples, well, opts)
		if err != nil {
			zap.L().Warn("backtest skipped", zap.String("well", well), zap.Error(err))
			continue
		}
		rows = append(rows, row{well: well, res: res})
	}
	if len(rows) == 0 {
		return eris.New("no well had enough flowing history to backtest")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].res.RMSE < rows[j].res.RMSE })

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WELL\tMODEL\tTRAIN\tTEST\tRMSE\tMAE\tSMAPE\tWAPE\tMASE\tNAIVE RMSE\tMAE IMPROV")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.3f\t%.3f\t%.3f\t%.2f\t%+.1f%%\n",
			r.well, r.res.Fit.Model.Kind, r.res.TrainN, r.res.TestN,
			r.res.RMSE, r.res.MAE, r.res.SMAPE, r.res.WAPE, r.res.MASE,
			r.res.NaiveRMSE, 100*r.res.MAEImprovement,
		)
	}
	return tw.Flush()
}
