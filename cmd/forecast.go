package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/pipeline"
	"github.com/volve-research/forecast-cli/internal/store"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run the full forecast pipeline over a production file",
	Long: `Reads a daily-production CSV/XLSX export, filters flowing samples per
well, fits exponential and hyperbolic decline curves, selects by AIC,
backtests on a chronological holdout, and projects the rate-cap scenario
with the CO2 intensity proxy.

Examples:
  # Forecast every well in a Volve-style export
  forecast --input volve_daily.csv

  # Persist results and write a CSV summary
  forecast --input volve_daily.xlsx --sheet "Daily Production Data" --save --format csv --output forecasts.csv

  # Forecast a single well with a custom holdout
  forecast --input volve_daily.csv --well "NO 15/9-F-14 H" --holdout 60`,
	RunE: runForecast,
}

func init() {
	f := forecastCmd.Flags()
	f.String("input", "", "daily production file (.csv or .xlsx)")
	f.String("sheet", "", "XLSX sheet name (default: first sheet)")
	f.String("well", "", "forecast a single well")
	f.Int("holdout", 0, "backtest holdout samples (overrides config)")
	f.Float64("cap-percentile", 0, "cap percentile (overrides config)")
	f.Float64("cap-multiplier", 0, "cap multiplier (overrides config)")
	f.Float64("intensity", 0, "CO2 intensity in kg/Sm3 (overrides config)")
	f.Int("concurrency", 0, "concurrent wells (overrides config)")
	f.Bool("save", false, "persist results to the run store")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table or csv")
	_ = forecastCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	sheet, _ := flags.GetString("sheet")
	well, _ := flags.GetString("well")
	save, _ := flags.GetBool("save")
	output, _ := flags.GetString("output")
	format, _ := flags.GetString("format")

	params := pipeline.ParamsFromConfig(cfg)
	if v, _ := flags.GetInt("holdout"); v > 0 {
		params.Holdout = v
	}
	if v, _ := flags.GetFloat64("cap-percentile"); v > 0 {
		params.Scenario.CapPercentile = v
	}
	if v, _ := flags.GetFloat64("cap-multiplier"); v > 0 {
		params.Scenario.CapMultiplier = v
	}
	if v, _ := flags.GetFloat64("intensity"); v > 0 {
		params.Intensity = v
	}
	concurrency := cfg.Batch.Concurrency
	if v, _ := flags.GetInt("concurrency"); v > 0 {
		concurrency = v
	}

	series, err := loadSeries(input, sheet)
	if err != nil {
		return err
	}
	if well != "" {
		records, ok := series[well]
		if !ok {
			return eris.Errorf("well %q not found in %s", well, input)
		}
		series = map[string][]model.DailyRecord{well: records}
	}

	results, failures := pipeline.RunAll(ctx, series, params, concurrency)
	if len(results) == 0 {
		return eris.Errorf("no well produced a forecast (%d failures)", len(failures))
	}

	if save {
		if err := persistRun(ctx, input, results); err != nil {
			return err
		}
	}

	zap.L().Info("forecast complete",
		zap.Int("succeeded", len(results)),
		zap.Int("failed", len(failures)),
	)

	return writeForecasts(results, format, output)
}

// persistRun saves the batch under a fresh run ID.
func persistRun(ctx context.Context, source string, results map[string]*pipeline.WellForecast) error {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, source)
	if err != nil {
		return err
	}
	for _, fc := range results {
		if err := st.SaveWellForecast(ctx, run.ID, fc); err != nil {
			return err
		}
	}
	if err := st.CompleteRun(ctx, run.ID, model.RunStatusComplete, len(results)); err != nil {
		return err
	}

	zap.L().Info("run persisted", zap.String("run_id", run.ID), zap.Int("wells", len(results)))
	return nil
}

var forecastColumns = []string{
	"well", "samples", "model", "qi", "di", "b", "aic",
	"backtest_rmse", "backtest_mae", "cap", "base_cum", "capped_cum",
	"base_co2_t", "capped_co2_t",
}

func forecastRow(fc *pipeline.WellForecast) []string {
	b := ""
	if fc.Fit.Model.B > 0 {
		b = strconv.FormatFloat(fc.Fit.Model.B, 'f', 4, 64)
	}
	return []string{
		fc.Well,
		strconv.Itoa(fc.Samples),
		string(fc.Fit.Model.Kind),
		strconv.FormatFloat(fc.Fit.Model.Qi, 'f', 1, 64),
		strconv.FormatFloat(fc.Fit.Model.Di, 'g', 4, 64),
		b,
		strconv.FormatFloat(fc.Fit.AIC, 'f', 1, 64),
		strconv.FormatFloat(fc.Backtest.RMSE, 'f', 2, 64),
		strconv.FormatFloat(fc.Backtest.MAE, 'f', 2, 64),
		strconv.FormatFloat(fc.Scenario.Cap, 'f', 1, 64),
		strconv.FormatFloat(fc.Scenario.BaseCumulative, 'f', 0, 64),
		strconv.FormatFloat(fc.Scenario.CappedCumulative, 'f', 0, 64),
		strconv.FormatFloat(fc.Emissions.BaseCO2Tonnes, 'f', 1, 64),
		strconv.FormatFloat(fc.Emissions.CappedCO2Tonnes, 'f', 1, 64),
	}
}

func writeForecasts(results map[string]*pipeline.WellForecast, format, output string) error {
	wells := make([]string, 0, len(results))
	for w := range results {
		wells = append(wells, w)
	}
	sort.Strings(wells)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "create %s", output)
		}
		defer f.Close()
		out = f
	}

	if format == "csv" {
		w := csv.NewWriter(out)
		if err := w.Write(forecastColumns); err != nil {
			return eris.Wrap(err, "write csv header")
		}
		for _, well := range wells {
			if err := w.Write(forecastRow(results[well])); err != nil {
				return eris.Wrap(err, "write csv row")
			}
		}
		w.Flush()
		return eris.Wrap(w.Error(), "flush csv")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WELL\tMODEL\tQI\tDI\tRMSE\tMAE\tCAP\tBASE\tCAPPED\tCO2 AVOIDED (t)")
	for _, well := range wells {
		fc := results[well]
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.4g\t%.2f\t%.2f\t%.1f\t%.0f\t%.0f\t%.1f\n",
			fc.Well, fc.Fit.Model.Kind, fc.Fit.Model.Qi, fc.Fit.Model.Di,
			fc.Backtest.RMSE, fc.Backtest.MAE,
			fc.Scenario.Cap, fc.Scenario.BaseCumulative, fc.Scenario.CappedCumulative,
			fc.Emissions.AvoidedTonnes,
		)
	}
	return tw.Flush()
}
