// Package flow classifies daily records as flowing or non-flowing and
// computes uptime-normalized effective rates.
package flow

import (
	"math"

	"github.com/volve-research/forecast-cli/internal/model"
)

// DefaultHoursFloor is the minimum on-stream hours used in the effective-rate
// division. It prevents blow-up on records reporting minutes of uptime.
const DefaultHoursFloor = 0.1

// Filter returns the ordered subsequence of flowing samples from a well's
// daily records. Input must already be sorted by date and deduplicated per
// (well, date); Filter does not re-sort. A record is flowing iff on-stream
// hours > 0 and oil volume > 0. Non-flowing records are dropped, not
// zero-filled: decline curves must never be fit against downtime samples.
func Filter(records []model.DailyRecord, hoursFloor float64) []model.FlowingSample {
	if hoursFloor <= 0 {
		hoursFloor = DefaultHoursFloor
	}

	var out []model.FlowingSample
	for _, r := range records {
		if !IsFlowing(r) {
			continue
		}
		out = append(out, model.FlowingSample{
			Well:          r.Well,
			Date:          r.Date,
			OnStreamHours: r.OnStreamHours,
			OilVolume:     r.OilVolume,
			EffectiveRate: EffectiveRate(r.OilVolume, r.OnStreamHours, hoursFloor),
		})
	}
	return out
}

// IsFlowing reports whether a record qualifies as a flowing observation.
func IsFlowing(r model.DailyRecord) bool {
	return r.OnStreamHours > 0 && r.OilVolume > 0 &&
		!math.IsNaN(r.OnStreamHours) && !math.IsNaN(r.OilVolume)
}

// EffectiveRate converts a daily volume into a full-day-equivalent flowing
// rate: volume / (hours/24). Hours are floored to keep the division bounded
// for sub-hour uptime.
func EffectiveRate(volume, hours, hoursFloor float64) float64 {
	h := math.Max(hours, hoursFloor)
	return volume / (h / 24.0)
}

// Rates extracts the effective-rate series from flowing samples.
func Rates(samples []model.FlowingSample) []float64 {
	rates := make([]float64, len(samples))
	for i, s := range samples {
		rates[i] = s.EffectiveRate
	}
	return rates
}
