// Package scenario projects a fitted decline model under a data-derived
// rate cap and compares the capped cumulative trajectory against the
// unconstrained one.
package scenario

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/volve-research/forecast-cli/internal/dca"
)

// Defaults for deriving the cap from the historical rate distribution.
const (
	DefaultCapPercentile = 0.95
	DefaultCapMultiplier = 0.8
)

// Options derives the cap: cap = CapMultiplier × quantile(rates, CapPercentile).
type Options struct {
	CapPercentile float64
	CapMultiplier float64
}

func (o Options) withDefaults() Options {
	if o.CapPercentile <= 0 || o.CapPercentile >= 1 {
		o.CapPercentile = DefaultCapPercentile
	}
	if o.CapMultiplier <= 0 {
		o.CapMultiplier = DefaultCapMultiplier
	}
	return o
}

// Result is a pair of cumulative-volume totals over a shared horizon plus
// the cap that produced them. Stateless function of (model, cap, horizon).
type Result struct {
	Cap         float64 `json:"cap"` // Sm3/d
	P95         float64 `json:"p95"`
	HorizonDays float64 `json:"horizon_days"`

	BaseCumulative   float64 `json:"base_cumulative"`   // Sm3
	CappedCumulative float64 `json:"capped_cumulative"` // Sm3
	Deferred         float64 `json:"deferred"`          // base - capped
	Ratio            float64 `json:"ratio"`             // capped / base

	// CrossoverDay is the time offset where the modeled rate falls below the
	// cap; 0 when the model never exceeds it.
	CrossoverDay float64 `json:"crossover_day"`
}

// Project computes base and capped cumulative volumes for a fitted model
// over [0, horizonDays]. rates is the historical effective-rate distribution
// the cap is derived from. Where the modeled rate exceeds the cap, volume
// accrues at the constant cap rate; the segment boundary comes from solving
// the model equation for the crossing time, so both segments use closed
// forms.
func Project(m dca.Model, rates []float64, horizonDays float64, opts Options) (*Result, error) {
	if horizonDays <= 0 || math.IsNaN(horizonDays) {
		return nil, eris.Wrapf(dca.ErrInvalidSample, "scenario: horizon %v days", horizonDays)
	}
	if len(rates) == 0 {
		return nil, eris.Wrap(dca.ErrInsufficientHistory, "scenario: empty rate distribution")
	}
	opts = opts.withDefaults()

	p95 := Percentile(rates, opts.CapPercentile)
	capRate := opts.CapMultiplier * p95
	if capRate <= 0 || !finite(capRate) {
		return nil, eris.Wrapf(dca.ErrInvalidSample, "scenario: derived cap %v from p%v=%v", capRate, opts.CapPercentile*100, p95)
	}

	base := m.Cumulative(0, horizonDays)

	cross := math.Min(m.TimeAtRate(capRate), horizonDays)
	capped := capRate*cross + m.Cumulative(cross, horizonDays)

	res := &Result{
		Cap:              capRate,
		P95:              p95,
		HorizonDays:      horizonDays,
		BaseCumulative:   base,
		CappedCumulative: capped,
		Deferred:         base - capped,
		CrossoverDay:     cross,
	}
	if base > 0 {
		res.Ratio = capped / base
	}
	return res, nil
}

// Percentile returns the empirical quantile of the given values.
func Percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
