package emissions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/scenario"
)

func TestCO2Tonnes_DefaultIntensity(t *testing.T) {
	// 70 kg/Sm3 over 1000 Sm3 is 70 tonnes.
	got, err := CO2Tonnes(DefaultIntensity, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, got, 1e-9)
}

func TestCO2Tonnes_Linear(t *testing.T) {
	a, err := CO2Tonnes(DefaultIntensity, 12345.6)
	require.NoError(t, err)
	b, err := CO2Tonnes(DefaultIntensity, 2*12345.6)
	require.NoError(t, err)
	assert.InDelta(t, 2*a, b, 1e-9)
}

func TestCO2Tonnes_ZeroVolume(t *testing.T) {
	got, err := CO2Tonnes(DefaultIntensity, 0)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCO2Tonnes_NegativeVolume(t *testing.T) {
	_, err := CO2Tonnes(DefaultIntensity, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, dca.ErrInvalidSample)
}

func TestCO2Tonnes_BadInputs(t *testing.T) {
	_, err := CO2Tonnes(-5, 100)
	assert.ErrorIs(t, err, dca.ErrInvalidSample)

	_, err = CO2Tonnes(DefaultIntensity, math.NaN())
	assert.ErrorIs(t, err, dca.ErrInvalidSample)
}

func TestCompare(t *testing.T) {
	s := &scenario.Result{BaseCumulative: 500000, CappedCumulative: 450000}
	cmp, err := Compare(s, DefaultIntensity)
	require.NoError(t, err)
	assert.InDelta(t, 35000.0, cmp.BaseCO2Tonnes, 1e-6)
	assert.InDelta(t, 31500.0, cmp.CappedCO2Tonnes, 1e-6)
	assert.InDelta(t, 3500.0, cmp.AvoidedTonnes, 1e-6)
	assert.Equal(t, DefaultIntensity, cmp.Intensity)
}

func TestCompare_IntensityBounds(t *testing.T) {
	s := &scenario.Result{BaseCumulative: 1000, CappedCumulative: 1000}
	low, err := Compare(s, LowIntensity)
	require.NoError(t, err)
	high, err := Compare(s, HighIntensity)
	require.NoError(t, err)
	assert.Less(t, low.BaseCO2Tonnes, high.BaseCO2Tonnes)
	assert.Zero(t, low.AvoidedTonnes)
}
