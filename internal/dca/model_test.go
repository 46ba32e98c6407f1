package dca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExponentialRate(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	assert.InDelta(t, 1000.0, m.Rate(0), 1e-9)
	assert.InDelta(t, 1000*math.Exp(-1), m.Rate(1000), 1e-9)
}

func TestExponentialCumulative(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	// (qi/di)(1 - e^-1) over [0, 1000]
	assert.InDelta(t, 1e6*(1-math.Exp(-1)), m.Cumulative(0, 1000), 1e-6)
}

func TestHyperbolicRate(t *testing.T) {
	m := Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 0.5}
	assert.InDelta(t, 1000.0, m.Rate(0), 1e-9)
	// (1 + 0.5*0.001*1000)^(-2) = 1.5^-2
	assert.InDelta(t, 1000/(1.5*1.5), m.Rate(1000), 1e-9)
}

func TestHyperbolicCumulative(t *testing.T) {
	m := Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 0.5}
	// ∫ qi(1+b·di·t)^(-1/b) over [0,1000] = 2e6·(1 - 1/1.5)
	assert.InDelta(t, 2e6/3, m.Cumulative(0, 1000), 1e-6)
}

func TestHyperbolicCumulative_UnitB(t *testing.T) {
	m := Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 1.0}
	// harmonic decline: (qi/di)·ln(1+di·t)
	assert.InDelta(t, 1e6*math.Log(2), m.Cumulative(0, 1000), 1e-6)
}

func TestHyperbolicSmallB_UsesExponentialLimit(t *testing.T) {
	hyp := Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 1e-6}
	exp := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	assert.InDelta(t, exp.Rate(500), hyp.Rate(500), 1e-9)
	assert.InDelta(t, exp.Cumulative(0, 500), hyp.Cumulative(0, 500), 1e-9)
}

func TestCumulative_ReversedInterval(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	assert.InDelta(t, -m.Cumulative(0, 100), m.Cumulative(100, 0), 1e-9)
}

func TestCumulative_Additive(t *testing.T) {
	m := Model{Kind: Hyperbolic, Qi: 800, Di: 0.002, B: 0.7}
	whole := m.Cumulative(0, 600)
	split := m.Cumulative(0, 250) + m.Cumulative(250, 600)
	assert.InDelta(t, whole, split, 1e-6)
}

func TestTimeAtRate_Exponential(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	tc := m.TimeAtRate(800)
	assert.InDelta(t, math.Log(1.25)/0.001, tc, 1e-9)
	assert.InDelta(t, 800.0, m.Rate(tc), 1e-9)
}

func TestTimeAtRate_Hyperbolic(t *testing.T) {
	m := Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 0.5}
	tc := m.TimeAtRate(500)
	assert.InDelta(t, 500.0, m.Rate(tc), 1e-9)
}

func TestTimeAtRate_AboveInitial(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	assert.Equal(t, 0.0, m.TimeAtRate(1500))
}

func TestTimeAtRate_NonPositiveTarget(t *testing.T) {
	m := Model{Kind: Exponential, Qi: 1000, Di: 0.001}
	assert.True(t, math.IsInf(m.TimeAtRate(0), 1))
}

func TestParamCount(t *testing.T) {
	assert.Equal(t, 2, Model{Kind: Exponential}.ParamCount())
	assert.Equal(t, 3, Model{Kind: Hyperbolic}.ParamCount())
}

func TestModelString(t *testing.T) {
	assert.Contains(t, Model{Kind: Exponential, Qi: 1000, Di: 0.001}.String(), "exponential")
	assert.Contains(t, Model{Kind: Hyperbolic, Qi: 1000, Di: 0.001, B: 0.5}.String(), "b=0.5")
}
