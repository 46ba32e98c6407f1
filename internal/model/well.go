// Package model defines the core value types shared across the forecast pipeline.
package model

import "time"

// WellRole distinguishes producing wellbores from injectors.
type WellRole string

const (
	RoleProducer WellRole = "producer"
	RoleInjector WellRole = "injector"
)

// DailyRecord is one (well, date) observation from the cleaned daily
// production table. Upstream ingestion guarantees at most one record per
// (well, date), on-stream hours clamped to [0,24], and negative volumes
// dropped.
type DailyRecord struct {
	Well          string    `json:"well"`
	Date          time.Time `json:"date"`
	OnStreamHours float64   `json:"on_stream_hours"`
	OilVolume     float64   `json:"oil_volume"`   // Sm3/d
	GasVolume     float64   `json:"gas_volume"`   // Sm3/d
	WaterVolume   float64   `json:"water_volume"` // Sm3/d

	// Optional operational signals; nil when the source column is absent.
	DownholePressure *float64 `json:"downhole_pressure,omitempty"`
	WellheadPressure *float64 `json:"wellhead_pressure,omitempty"`
	ChokeSize        *float64 `json:"choke_size,omitempty"`
	InjectionVolume  *float64 `json:"injection_volume,omitempty"`

	Role WellRole `json:"role"`
}

// FlowingSample is a DailyRecord reclassified as a flowing observation:
// on-stream hours > 0 and oil volume > 0. It is derived statelessly and
// never persisted independently of its source record.
type FlowingSample struct {
	Well          string    `json:"well"`
	Date          time.Time `json:"date"`
	OnStreamHours float64   `json:"on_stream_hours"`
	OilVolume     float64   `json:"oil_volume"`
	// EffectiveRate is the full-day-equivalent flowing rate:
	// oil volume / (max(hours, eps)/24).
	EffectiveRate float64 `json:"effective_rate"`
}

// TimeOffset returns the sample's time offset in days since origin.
func (s FlowingSample) TimeOffset(origin time.Time) float64 {
	return s.Date.Sub(origin).Hours() / 24.0
}
