// Package ingest parses daily production tables from CSV and XLSX exports
// into the cleaned per-well series the forecast engine consumes: columns
// resolved by candidate-name guessing, hours clamped to [0,24], negative
// volumes dropped, one record per (well, date), chronologically sorted.
package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ColumnMapping lists candidate header names per field, tried in order.
// Matching is case-insensitive on trimmed headers.
type ColumnMapping struct {
	Date             []string `yaml:"date"`
	Well             []string `yaml:"well"`
	Oil              []string `yaml:"oil"`
	Gas              []string `yaml:"gas"`
	Water            []string `yaml:"water"`
	OnStreamHours    []string `yaml:"on_stream_hours"`
	DownholePressure []string `yaml:"downhole_pressure"`
	WellheadPressure []string `yaml:"wellhead_pressure"`
	ChokeSize        []string `yaml:"choke_size"`
	InjectionVolume  []string `yaml:"injection_volume"`
	WellType         []string `yaml:"well_type"`
}

// DefaultMapping covers the confirmed Volve daily-production headers plus
// common aliases seen in operator exports.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		Date: []string{"DATEPRD", "DATE", "DATO", "PROD_DATE"},
		Well: []string{"WELL_BORE_CODE", "WELL", "WELLBORE", "WELL_BORE", "BORE", "WELL_NAME"},
		Oil:  []string{"BORE_OIL_VOL", "BORE_OIL_VOL_SM3", "OIL", "OIL_RATE", "OILRATE", "QO", "QOIL"},
		Gas:  []string{"BORE_GAS_VOL", "BORE_GAS_VOL_SM3", "GAS", "GAS_RATE", "GASRATE", "QG", "QGAS"},
		Water: []string{
			"BORE_WAT_VOL", "BORE_WAT_VOL_SM3", "WATER", "WATER_RATE", "WATERRATE", "QW", "QWAT",
		},
		OnStreamHours:    []string{"ON_STREAM_HRS", "ON_STREAM", "ON_STREAM_HOURS"},
		DownholePressure: []string{"AVG_DOWNHOLE_PRESSURE"},
		WellheadPressure: []string{"AVG_WHP_P", "AVG_WHP"},
		ChokeSize:        []string{"AVG_CHOKE_SIZE_P"},
		InjectionVolume:  []string{"BORE_WI_VOL", "WATER_INJ_VOL", "WI"},
		WellType:         []string{"WELL_TYPE"},
	}
}

// LoadMapping reads candidate-name overrides from a YAML file. Fields left
// empty in the file keep the defaults.
func LoadMapping(path string) (ColumnMapping, error) {
	m := DefaultMapping()
	data, err := os.ReadFile(path)
	if err != nil {
		return m, eris.Wrapf(err, "ingest: read mapping file %s", path)
	}

	var override ColumnMapping
	if err := yaml.Unmarshal(data, &override); err != nil {
		return m, eris.Wrapf(err, "ingest: parse mapping file %s", path)
	}

	merge := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	merge(&m.Date, override.Date)
	merge(&m.Well, override.Well)
	merge(&m.Oil, override.Oil)
	merge(&m.Gas, override.Gas)
	merge(&m.Water, override.Water)
	merge(&m.OnStreamHours, override.OnStreamHours)
	merge(&m.DownholePressure, override.DownholePressure)
	merge(&m.WellheadPressure, override.WellheadPressure)
	merge(&m.ChokeSize, override.ChokeSize)
	merge(&m.InjectionVolume, override.InjectionVolume)
	merge(&m.WellType, override.WellType)

	return m, nil
}
