package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volve-research/forecast-cli/internal/model"
)

func day(n int) time.Time {
	return time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestFilter_ExcludesDowntime(t *testing.T) {
	records := []model.DailyRecord{
		{Well: "A", Date: day(0), OnStreamHours: 24, OilVolume: 100},
		{Well: "A", Date: day(1), OnStreamHours: 0, OilVolume: 100}, // shut in
		{Well: "A", Date: day(2), OnStreamHours: 24, OilVolume: 0},  // no oil
		{Well: "A", Date: day(3), OnStreamHours: 12, OilVolume: 50},
		{Well: "A", Date: day(4), OnStreamHours: -1, OilVolume: 50}, // invalid hours
	}

	samples := Filter(records, DefaultHoursFloor)
	require.Len(t, samples, 2)
	assert.Equal(t, day(0), samples[0].Date)
	assert.Equal(t, day(3), samples[1].Date)
}

func TestFilter_DropsNotZeroFills(t *testing.T) {
	// Gaps stay gaps: the output sequence skips downtime days entirely.
	records := []model.DailyRecord{
		{Well: "A", Date: day(0), OnStreamHours: 24, OilVolume: 100},
		{Well: "A", Date: day(5), OnStreamHours: 24, OilVolume: 90},
	}
	samples := Filter(records, DefaultHoursFloor)
	require.Len(t, samples, 2)
	assert.Equal(t, 5.0, samples[1].TimeOffset(samples[0].Date))
}

func TestFilter_PreservesOrder(t *testing.T) {
	var records []model.DailyRecord
	for i := 0; i < 10; i++ {
		records = append(records, model.DailyRecord{
			Well: "A", Date: day(i), OnStreamHours: 24, OilVolume: float64(100 - i),
		})
	}
	samples := Filter(records, DefaultHoursFloor)
	require.Len(t, samples, 10)
	for i := 1; i < len(samples); i++ {
		assert.True(t, samples[i-1].Date.Before(samples[i].Date))
	}
}

func TestEffectiveRate_FullDay(t *testing.T) {
	// 24h uptime: effective rate equals the daily volume.
	assert.InDelta(t, 100.0, EffectiveRate(100, 24, DefaultHoursFloor), 1e-12)
}

func TestEffectiveRate_HalfDay(t *testing.T) {
	// 12h uptime doubles the full-day-equivalent rate.
	assert.InDelta(t, 200.0, EffectiveRate(100, 12, DefaultHoursFloor), 1e-12)
}

func TestEffectiveRate_MonotonicInHours(t *testing.T) {
	// Smaller uptime => larger effective rate, fixed volume.
	prev := 0.0
	for _, h := range []float64{24, 18, 12, 6, 3, 1} {
		r := EffectiveRate(100, h, DefaultHoursFloor)
		assert.Greater(t, r, prev)
		prev = r
	}
}

func TestEffectiveRate_FloorBoundsSpikes(t *testing.T) {
	// Sub-floor uptime is floored so the rate cannot blow up.
	spiky := EffectiveRate(100, 0.001, 0.1)
	floored := EffectiveRate(100, 0.1, 0.1)
	assert.Equal(t, floored, spiky)
}

func TestRates(t *testing.T) {
	samples := []model.FlowingSample{
		{EffectiveRate: 10}, {EffectiveRate: 20},
	}
	assert.Equal(t, []float64{10, 20}, Rates(samples))
}
