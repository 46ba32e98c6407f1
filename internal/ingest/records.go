package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/model"
)

// columns holds resolved header indices; -1 means absent.
type columns struct {
	date, well, oil, gas, water, hours       int
	downhole, whp, choke, injection, wellTyp int
}

// resolveColumns matches header names against the mapping's candidate lists.
// Date, well, and oil columns are required.
func resolveColumns(header []string, m ColumnMapping) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	pick := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := index[strings.ToUpper(c)]; ok {
				return i
			}
		}
		return -1
	}

	c := columns{
		date:      pick(m.Date),
		well:      pick(m.Well),
		oil:       pick(m.Oil),
		gas:       pick(m.Gas),
		water:     pick(m.Water),
		hours:     pick(m.OnStreamHours),
		downhole:  pick(m.DownholePressure),
		whp:       pick(m.WellheadPressure),
		choke:     pick(m.ChokeSize),
		injection: pick(m.InjectionVolume),
		wellTyp:   pick(m.WellType),
	}
	if c.date < 0 || c.well < 0 {
		return c, eris.Errorf("ingest: no date/well column among headers %v", header)
	}
	if c.oil < 0 {
		return c, eris.Errorf("ingest: no oil volume column among headers %v", header)
	}
	return c, nil
}

// ParseRows converts raw table rows into per-well chronological series.
// Rows with unparseable dates or empty well names are skipped; duplicate
// (well, date) rows are merged (volumes summed, hours max'd so uptime is
// never double-counted).
func ParseRows(header []string, rows [][]string, m ColumnMapping) (map[string][]model.DailyRecord, error) {
	cols, err := resolveColumns(header, m)
	if err != nil {
		return nil, err
	}

	type key struct {
		well string
		day  string
	}
	merged := make(map[key]*model.DailyRecord)
	var skipped int

	for _, row := range rows {
		date, ok := parseDate(cell(row, cols.date))
		if !ok {
			skipped++
			continue
		}
		well := strings.TrimSpace(cell(row, cols.well))
		if well == "" {
			skipped++
			continue
		}

		rec := model.DailyRecord{
			Well:          well,
			Date:          date,
			OnStreamHours: clampHours(parseFloat(cell(row, cols.hours))),
			OilVolume:     nonNegative(parseFloat(cell(row, cols.oil))),
			GasVolume:     nonNegative(parseFloat(cell(row, cols.gas))),
			WaterVolume:   nonNegative(parseFloat(cell(row, cols.water))),
			Role:          parseRole(cell(row, cols.wellTyp)),
		}
		rec.DownholePressure = optional(cell(row, cols.downhole))
		rec.WellheadPressure = optional(cell(row, cols.whp))
		rec.ChokeSize = optional(cell(row, cols.choke))
		rec.InjectionVolume = optional(cell(row, cols.injection))

		k := key{well: well, day: date.Format("2006-01-02")}
		if prev, ok := merged[k]; ok {
			mergeRecords(prev, rec)
		} else {
			r := rec
			merged[k] = &r
		}
	}

	out := make(map[string][]model.DailyRecord)
	for _, r := range merged {
		out[r.Well] = append(out[r.Well], *r)
	}
	for well := range out {
		series := out[well]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
		out[well] = series
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped unstructured rows", zap.Int("skipped", skipped))
	}
	if len(out) == 0 {
		return nil, eris.New("ingest: no usable production rows found")
	}
	return out, nil
}

// mergeRecords folds a duplicate (well, date) row into the existing record:
// volumes sum (overlapping sources report components), hours take the max
// (uptime must never exceed the day).
func mergeRecords(dst *model.DailyRecord, src model.DailyRecord) {
	dst.OilVolume += src.OilVolume
	dst.GasVolume += src.GasVolume
	dst.WaterVolume += src.WaterVolume
	dst.OnStreamHours = math.Max(dst.OnStreamHours, src.OnStreamHours)
	if dst.DownholePressure == nil {
		dst.DownholePressure = src.DownholePressure
	}
	if dst.WellheadPressure == nil {
		dst.WellheadPressure = src.WellheadPressure
	}
	if dst.ChokeSize == nil {
		dst.ChokeSize = src.ChokeSize
	}
	if dst.InjectionVolume != nil && src.InjectionVolume != nil {
		sum := *dst.InjectionVolume + *src.InjectionVolume
		dst.InjectionVolume = &sum
	} else if dst.InjectionVolume == nil {
		dst.InjectionVolume = src.InjectionVolume
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-06",
	"02-Jan-2006",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate tries the known layouts, then falls back to treating the value
// as an Excel serial day (origin 1899-12-30).
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Truncate(24 * time.Hour), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		origin := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return origin.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// clampHours forces on-stream hours into [0,24]; unparseable values count
// as zero uptime.
func clampHours(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 24)
}

// nonNegative drops invalid volumes: negative readings come from data
// corrections and must not enter the series.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func optional(s string) *float64 {
	v := parseFloat(s)
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func parseRole(s string) model.WellRole {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WI", "INJECTOR", "WATER INJECTION":
		return model.RoleInjector
	default:
		return model.RoleProducer
	}
}
