// Package pipeline orchestrates the per-well forecast: flow filtering,
// model selection, backtesting, scenario projection, and the emissions
// proxy. Each well is an independent pure computation, so multi-well runs
// fan out across a bounded worker group with no shared state beyond the
// result map.
package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/volve-research/forecast-cli/internal/backtest"
	"github.com/volve-research/forecast-cli/internal/config"
	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/emissions"
	"github.com/volve-research/forecast-cli/internal/flow"
	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/scenario"
)

// Params carries every tunable the engine consumes, resolved once per run.
type Params struct {
	HoursFloor float64
	Fit        dca.FitOptions
	Holdout    int
	Scenario   scenario.Options
	Intensity  float64 // kg CO2 / Sm3
}

// ParamsFromConfig resolves pipeline parameters from application config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		HoursFloor: cfg.DCA.HoursFloor,
		Fit: dca.FitOptions{
			MinSamples:    cfg.DCA.MinSamples,
			MaxIterations: cfg.DCA.MaxIterations,
		},
		Holdout: cfg.Backtest.Holdout,
		Scenario: scenario.Options{
			CapPercentile: cfg.Scenario.CapPercentile,
			CapMultiplier: cfg.Scenario.CapMultiplier,
		},
		Intensity: cfg.Emissions.Intensity,
	}
}

// WellForecast is the full engine output for one well: the canonical fit on
// complete history, its backtest, the rate-cap scenario, and the paired
// emissions comparison.
type WellForecast struct {
	Well      string                `json:"well"`
	Samples   int                   `json:"samples"` // flowing samples
	Fit       *dca.FitResult        `json:"fit"`
	Backtest  *backtest.Result      `json:"backtest"`
	Scenario  *scenario.Result      `json:"scenario"`
	Emissions *emissions.Comparison `json:"emissions"`
}

// ForecastWell runs the full pipeline for a single well's chronological
// daily records.
func ForecastWell(records []model.DailyRecord, well string, p Params) (*WellForecast, error) {
	samples := flow.Filter(records, p.HoursFloor)
	if len(samples) == 0 {
		return nil, eris.Wrapf(dca.ErrInsufficientHistory, "pipeline: well %s: no flowing samples in %d records", well, len(records))
	}

	// Backtest first: the holdout split fails fast when history is too thin
	// for a trustworthy validation.
	bt, err := backtest.Run(samples, well, backtest.Options{Holdout: p.Holdout, Fit: p.Fit})
	if err != nil {
		return nil, err
	}

	// Canonical model refit on the complete, non-held-out history.
	origin := samples[0].Date
	t := make([]float64, len(samples))
	q := make([]float64, len(samples))
	for i, s := range samples {
		t[i] = s.TimeOffset(origin)
		q[i] = s.EffectiveRate
	}
	fit, err := dca.SelectBest(t, q, well, p.Fit)
	if err != nil {
		return nil, err
	}

	horizon := t[len(t)-1]
	sc, err := scenario.Project(fit.Model, q, horizon, p.Scenario)
	if err != nil {
		return nil, err
	}

	em, err := emissions.Compare(sc, p.Intensity)
	if err != nil {
		return nil, err
	}

	return &WellForecast{
		Well:      well,
		Samples:   len(samples),
		Fit:       fit,
		Backtest:  bt,
		Scenario:  sc,
		Emissions: em,
	}, nil
}

// RunAll forecasts every well concurrently with a bounded worker group.
// Individual well failures do not abort the batch; they are collected and
// returned alongside the successes.
func RunAll(ctx context.Context, series map[string][]model.DailyRecord, p Params, concurrency int) (map[string]*WellForecast, map[string]error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	results := make(map[string]*WellForecast)
	failures := make(map[string]error)

	for well, records := range series {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			log := zap.L().With(zap.String("well", well))
			fc, err := ForecastWell(records, well, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[well] = err
				log.Warn("well forecast failed", zap.Error(err))
				return nil // don't abort the batch on individual failure
			}
			results[well] = fc
			log.Info("well forecast complete",
				zap.String("model", string(fc.Fit.Model.Kind)),
				zap.Float64("backtest_rmse", fc.Backtest.RMSE),
				zap.Float64("cap", fc.Scenario.Cap),
			)
			return nil
		})
	}

	_ = g.Wait()
	return results, failures
}
