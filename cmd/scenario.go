package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/emissions"
	"github.com/volve-research/forecast-cli/internal/flow"
	"github.com/volve-research/forecast-cli/internal/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Project a rate-cap what-if for one well",
	Long: `Fits the canonical decline model on a well's full flowing history,
derives the cap from the historical rate distribution (multiplier x
percentile), and compares base vs capped cumulative production with the
CO2 intensity proxy.

Example:
  scenario --input volve_daily.csv --well "NO 15/9-F-14 H"`,
	RunE: runScenario,
}

func init() {
	f := scenarioCmd.Flags()
	f.String("input", "", "daily production file (.csv or .xlsx)")
	f.String("sheet", "", "XLSX sheet name (default: first sheet)")
	f.String("well", "", "well to project")
	f.Float64("cap-percentile", 0, "cap percentile (overrides config)")
	f.Float64("cap-multiplier", 0, "cap multiplier (overrides config)")
	f.Float64("intensity", 0, "CO2 intensity in kg/Sm3 (overrides config)")
	_ = scenarioCmd.MarkFlagRequired("input")
	_ = scenarioCmd.MarkFlagRequired("well")

	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	sheet, _ := flags.GetString("sheet")
	well, _ := flags.GetString("well")

	opts := scenario.Options{
		CapPercentile: cfg.Scenario.CapPercentile,
		CapMultiplier: cfg.Scenario.CapMultiplier,
	}
	if v, _ := flags.GetFloat64("cap-percentile"); v > 0 {
		opts.CapPercentile = v
	}
	if v, _ := flags.GetFloat64("cap-multiplier"); v > 0 {
		opts.CapMultiplier = v
	}
	intensity := cfg.Emissions.Intensity
	if v, _ := flags.GetFloat64("intensity"); v > 0 {
		intensity = v
	}

	series, err := loadSeries(input, sheet)
	if err != nil {
		return err
	}
	records, ok := series[well]
	if !ok {
		return eris.Errorf("well %q not found in %s", well, input)
	}

	samples := flow.Filter(records, cfg.DCA.HoursFloor)
	if len(samples) == 0 {
		return eris.Errorf("well %q has no flowing samples", well)
	}

	origin := samples[0].Date
	t := make([]float64, len(samples))
	q := make([]float64, len(samples))
	for i, s := range samples {
		t[i] = s.TimeOffset(origin)
		q[i] = s.EffectiveRate
	}

	fit, err := dca.SelectBest(t, q, well, dca.FitOptions{
		MinSamples:    cfg.DCA.MinSamples,
		MaxIterations: cfg.DCA.MaxIterations,
	})
	if err != nil {
		return err
	}

	sc, err := scenario.Project(fit.Model, q, t[len(t)-1], opts)
	if err != nil {
		return err
	}
	em, err := emissions.Compare(sc, intensity)
	if err != nil {
		return err
	}

	fmt.Printf("Well:              %s\n", well)
	fmt.Printf("Model:             %s\n", fit.Model)
	fmt.Printf("Horizon:           %.0f days (%d flowing samples)\n", sc.HorizonDays, len(samples))
	fmt.Printf("P%.0f rate:          %.1f Sm3/d\n", opts.CapPercentile*100, sc.P95)
	fmt.Printf("Cap (%.2fx):       %.1f Sm3/d\n", opts.CapMultiplier, sc.Cap)
	fmt.Printf("Crossover:         day %.1f\n", sc.CrossoverDay)
	fmt.Printf("Base cumulative:   %.0f Sm3\n", sc.BaseCumulative)
	fmt.Printf("Capped cumulative: %.0f Sm3 (%.1f%% of base)\n", sc.CappedCumulative, 100*sc.Ratio)
	fmt.Printf("Deferred volume:   %.0f Sm3\n", sc.Deferred)
	fmt.Printf("CO2 proxy (%.0f kg/Sm3): base %.1f t, capped %.1f t, avoided %.1f t\n",
		em.Intensity, em.BaseCO2Tonnes, em.CappedCO2Tonnes, em.AvoidedTonnes)

	return nil
}
