// Package emissions applies a fixed-intensity CO2 proxy to cumulative oil
// volumes. This is an operational (Scope 1+2) intensity assumption, not
// metered emissions accounting.
package emissions

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/volve-research/forecast-cli/internal/dca"
	"github.com/volve-research/forecast-cli/internal/scenario"
)

// Intensity factors in kg CO2 per Sm3 oil produced. The default reflects a
// small mature FPSO field; low/high bound the sensitivity range
// (electrified platforms vs. aging infrastructure).
const (
	DefaultIntensity = 70.0
	LowIntensity     = 30.0
	HighIntensity    = 100.0
)

// CO2Tonnes converts a cumulative oil volume (Sm3) to tonnes of CO2 using
// the given intensity factor (kg CO2/Sm3). Negative volume is invalid —
// failed, not coerced.
func CO2Tonnes(intensity, volumeSm3 float64) (float64, error) {
	if volumeSm3 < 0 || math.IsNaN(volumeSm3) {
		return 0, eris.Wrapf(dca.ErrInvalidSample, "emissions: cumulative volume %v Sm3", volumeSm3)
	}
	if intensity < 0 || math.IsNaN(intensity) {
		return 0, eris.Wrapf(dca.ErrInvalidSample, "emissions: intensity %v kg/Sm3", intensity)
	}
	return intensity * volumeSm3 / 1000.0, nil
}

// Comparison pairs the emissions estimates for the base and capped
// trajectories of one scenario.
type Comparison struct {
	Intensity       float64 `json:"intensity"` // kg CO2 / Sm3
	BaseCO2Tonnes   float64 `json:"base_co2_tonnes"`
	CappedCO2Tonnes float64 `json:"capped_co2_tonnes"`
	AvoidedTonnes   float64 `json:"avoided_tonnes"`
}

// Compare applies the same intensity factor to both cumulative totals of a
// scenario result.
func Compare(s *scenario.Result, intensity float64) (*Comparison, error) {
	base, err := CO2Tonnes(intensity, s.BaseCumulative)
	if err != nil {
		return nil, err
	}
	capped, err := CO2Tonnes(intensity, s.CappedCumulative)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Intensity:       intensity,
		BaseCO2Tonnes:   base,
		CappedCO2Tonnes: capped,
		AvoidedTonnes:   base - capped,
	}, nil
}
