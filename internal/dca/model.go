// Package dca implements decline-curve analysis: exponential and hyperbolic
// rate models, bounded nonlinear least-squares fitting, and AIC-based model
// selection.
package dca

import (
	"fmt"
	"math"
)

// Kind identifies a decline-model variant.
type Kind string

const (
	Exponential Kind = "exponential"
	Hyperbolic  Kind = "hyperbolic"
)

// SmallBThreshold is the curvature exponent below which hyperbolic
// evaluation switches to the exponential limiting formulas. The hyperbolic
// closed forms degrade numerically as b approaches zero.
const SmallBThreshold = 1e-4

// unitBTolerance selects the logarithmic cumulative form, which replaces the
// general hyperbolic integral at b = 1 where it divides by zero.
const unitBTolerance = 1e-6

// Model is a fitted decline curve. Exactly two variants exist, so the type
// is a tagged union rather than an interface hierarchy: Kind selects the
// evaluation formulas, B is meaningful only for Hyperbolic. Immutable once
// fit.
type Model struct {
	Kind Kind    `json:"kind"`
	Qi   float64 `json:"qi"` // initial rate, Sm3/d
	Di   float64 `json:"di"` // initial decline rate, 1/day
	B    float64 `json:"b,omitempty"`
}

// ParamCount returns the number of free parameters (2 for exponential,
// 3 for hyperbolic), used as k in the AIC penalty.
func (m Model) ParamCount() int {
	if m.Kind == Hyperbolic {
		return 3
	}
	return 2
}

// Rate evaluates the modeled rate at time offset t (days since the fit
// window's first flowing sample).
func (m Model) Rate(t float64) float64 {
	switch m.Kind {
	case Exponential:
		return m.Qi * math.Exp(-m.Di*t)
	case Hyperbolic:
		if m.B < SmallBThreshold {
			return m.Qi * math.Exp(-m.Di*t)
		}
		return m.Qi * math.Pow(1.0+m.B*m.Di*t, -1.0/m.B)
	}
	return math.NaN()
}

// Cumulative integrates the rate between time offsets t0 and t1 (days),
// returning the volume produced over the interval. Closed forms throughout;
// the hyperbolic b = 1 case uses the logarithmic limit.
func (m Model) Cumulative(t0, t1 float64) float64 {
	if t1 < t0 {
		return -m.Cumulative(t1, t0)
	}
	switch m.Kind {
	case Exponential:
		return m.expCumulative(t0, t1)
	case Hyperbolic:
		if m.B < SmallBThreshold {
			return m.expCumulative(t0, t1)
		}
		if math.Abs(m.B-1.0) < unitBTolerance {
			// ∫ qi/(1+di·t) dt = (qi/di)·ln(1+di·t)
			return m.Qi / m.Di * (math.Log1p(m.Di*t1) - math.Log1p(m.Di*t0))
		}
		// ∫ qi·(1+b·di·t)^(-1/b) dt = qi/(di·(b-1))·(1+b·di·t)^((b-1)/b)
		e := (m.B - 1.0) / m.B
		f := func(t float64) float64 { return math.Pow(1.0+m.B*m.Di*t, e) }
		return m.Qi / (m.Di * (m.B - 1.0)) * (f(t1) - f(t0))
	}
	return math.NaN()
}

func (m Model) expCumulative(t0, t1 float64) float64 {
	return m.Qi / m.Di * (math.Exp(-m.Di*t0) - math.Exp(-m.Di*t1))
}

// TimeAtRate solves Rate(t) = target for t. Decline rates are strictly
// decreasing, so the solution is unique. Returns 0 when the model starts at
// or below the target, and +Inf for a non-positive target.
func (m Model) TimeAtRate(target float64) float64 {
	if target <= 0 {
		return math.Inf(1)
	}
	ratio := m.Qi / target
	if ratio <= 1 {
		return 0
	}
	switch m.Kind {
	case Exponential:
		return math.Log(ratio) / m.Di
	case Hyperbolic:
		if m.B < SmallBThreshold {
			return math.Log(ratio) / m.Di
		}
		return (math.Pow(ratio, m.B) - 1.0) / (m.B * m.Di)
	}
	return math.NaN()
}

func (m Model) String() string {
	if m.Kind == Hyperbolic {
		return fmt.Sprintf("hyperbolic(qi=%.4g, di=%.4g, b=%.4g)", m.Qi, m.Di, m.B)
	}
	return fmt.Sprintf("exponential(qi=%.4g, di=%.4g)", m.Qi, m.Di)
}
