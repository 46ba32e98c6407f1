package dca

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/optimize"
)

// Parameter caps matching physically plausible decline behavior. A converged
// fit outside these is treated as a bound violation.
const (
	maxDeclineRate = 10.0 // 1/day
	maxCurvature   = 2.0
)

// FitOptions bounds the optimizer. Zero values take the defaults.
type FitOptions struct {
	MinSamples    int // minimum flowing samples required (default 10)
	MaxIterations int // optimizer iteration cap (default 2000)
}

const (
	DefaultMinSamples    = 10
	DefaultMaxIterations = 2000
)

func (o FitOptions) withDefaults() FitOptions {
	if o.MinSamples <= 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// FitResult is one fitted model variant with its selection score and
// residual statistics over the fit window.
type FitResult struct {
	Model Model   `json:"model"`
	AIC   float64 `json:"aic"`
	RMSE  float64 `json:"rmse"`
	MAE   float64 `json:"mae"`
	N     int     `json:"n"`
}

// Fit estimates a decline model of the given kind against (time-offset,
// effective-rate) pairs by nonlinear least squares. Time offsets are days
// since the first flowing sample of the fit window. Positivity of all
// parameters is enforced by optimizing in log space; non-convergence,
// bound violations, and the iteration cap surface as ErrFitFailure.
//
// Callers supply pre-filtered flowing samples. Fit guards only against
// non-positive or non-finite inputs, which fail fast as ErrInvalidSample.
func Fit(kind Kind, t, q []float64, well string, opts FitOptions) (*FitResult, error) {
	opts = opts.withDefaults()

	if len(t) != len(q) {
		return nil, eris.Wrapf(ErrInvalidSample, "dca: well %s: %d time offsets vs %d rates", well, len(t), len(q))
	}
	if len(q) < opts.MinSamples {
		return nil, eris.Wrapf(ErrInsufficientHistory, "dca: well %s: %d flowing samples, need %d", well, len(q), opts.MinSamples)
	}
	for i := range q {
		if !isFinite(t[i]) || t[i] < 0 {
			return nil, eris.Wrapf(ErrInvalidSample, "dca: well %s: time offset %v at index %d", well, t[i], i)
		}
		if !isFinite(q[i]) || q[i] <= 0 {
			return nil, eris.Wrapf(ErrInvalidSample, "dca: well %s: rate %v at index %d", well, q[i], i)
		}
	}

	x0 := initialGuess(kind, q)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			m := modelFromLogParams(kind, x)
			var sse float64
			for i := range t {
				r := q[i] - m.Rate(t[i])
				sse += r * r
			}
			if !isFinite(sse) {
				return math.MaxFloat64
			}
			return sse
		},
	}

	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-12,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: %s optimizer: %v", well, kind, err)
	}
	if result.Status == optimize.IterationLimit {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: %s fit exceeded %d iterations", well, kind, opts.MaxIterations)
	}
	if !isFinite(result.F) {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: %s fit diverged (objective %v)", well, kind, result.F)
	}

	m := modelFromLogParams(kind, result.X)
	if !isFinite(m.Qi) || !isFinite(m.Di) || m.Qi <= 0 || m.Di <= 0 {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: %s fit produced qi=%v di=%v", well, kind, m.Qi, m.Di)
	}
	if m.Di > maxDeclineRate {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: decline rate %v exceeds bound %v", well, m.Di, maxDeclineRate)
	}
	if kind == Hyperbolic && (m.B <= 0 || m.B > maxCurvature || !isFinite(m.B)) {
		return nil, eris.Wrapf(ErrFitFailure, "dca: well %s: curvature %v outside (0, %v]", well, m.B, maxCurvature)
	}

	return newFitResult(m, t, q), nil
}

// newFitResult computes residual statistics and AIC for a model against the
// samples it was fit to.
func newFitResult(m Model, t, q []float64) *FitResult {
	n := len(q)
	var rss, absSum float64
	for i := range q {
		r := q[i] - m.Rate(t[i])
		rss += r * r
		absSum += math.Abs(r)
	}
	return &FitResult{
		Model: m,
		AIC:   aic(n, rss, m.ParamCount()),
		RMSE:  math.Sqrt(rss / float64(n)),
		MAE:   absSum / float64(n),
		N:     n,
	}
}

// aic scores a Gaussian-residual fit: n·ln(RSS/n) + 2k. RSS is floored to
// keep the log defined on noiseless data.
func aic(n int, rss float64, k int) float64 {
	rss = math.Max(rss, 1e-12)
	return float64(n)*math.Log(rss/float64(n)) + 2.0*float64(k)
}

// initialGuess seeds the optimizer in log space: qi from the largest of the
// first 30 rates, a small initial decline, and mid-range curvature.
func initialGuess(kind Kind, q []float64) []float64 {
	head := q
	if len(head) > 30 {
		head = head[:30]
	}
	qi0 := head[0]
	for _, v := range head {
		if v > qi0 {
			qi0 = v
		}
	}
	if qi0 <= 0 {
		qi0 = 1.0
	}

	x0 := []float64{math.Log(qi0), math.Log(1e-3)}
	if kind == Hyperbolic {
		x0 = append(x0, math.Log(0.5))
	}
	return x0
}

// modelFromLogParams maps the optimizer's unconstrained log-space vector back
// to positive model parameters.
func modelFromLogParams(kind Kind, x []float64) Model {
	m := Model{Kind: kind, Qi: math.Exp(x[0]), Di: math.Exp(x[1])}
	if kind == Hyperbolic {
		m.B = math.Exp(x[2])
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
