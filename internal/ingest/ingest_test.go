package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const volveCSV = `DATEPRD,WELL_BORE_CODE,ON_STREAM_HRS,AVG_DOWNHOLE_PRESSURE,AVG_WHP_P,AVG_CHOKE_SIZE_P,BORE_OIL_VOL,BORE_GAS_VOL,BORE_WAT_VOL,WELL_TYPE
2014-04-07,NO 15/9-F-12,24,240.1,31.2,98.5,3112.4,458212,120.2,OP
2014-04-08,NO 15/9-F-12,24,239.8,31.0,98.5,3098.1,455120,131.7,OP
2014-04-07,NO 15/9-F-4,0,,,,0,0,0,WI
2014-04-09,NO 15/9-F-12,12.5,238.0,30.8,97.2,1502.6,221030,66.1,OP
`

func TestParseCSV_VolveHeaders(t *testing.T) {
	wells, err := parseCSV(strings.NewReader(volveCSV), DefaultMapping())
	require.NoError(t, err)
	require.Len(t, wells, 2)

	series := wells["NO 15/9-F-12"]
	require.Len(t, series, 3)
	assert.Equal(t, time.Date(2014, 4, 7, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.InDelta(t, 3112.4, series[0].OilVolume, 1e-9)
	assert.InDelta(t, 24.0, series[0].OnStreamHours, 1e-9)
	require.NotNil(t, series[0].DownholePressure)
	assert.InDelta(t, 240.1, *series[0].DownholePressure, 1e-9)
	assert.Equal(t, model.RoleProducer, series[0].Role)

	inj := wells["NO 15/9-F-4"]
	require.Len(t, inj, 1)
	assert.Equal(t, model.RoleInjector, inj[0].Role)
	assert.Nil(t, inj[0].DownholePressure)
}

func TestParseCSV_SemicolonDelimited(t *testing.T) {
	data := "DATEPRD;WELL_BORE_CODE;ON_STREAM_HRS;BORE_OIL_VOL\n" +
		"2014-04-07;W-1;24;1000\n" +
		"2014-04-08;W-1;24;990\n"
	wells, err := parseCSV(strings.NewReader(data), DefaultMapping())
	require.NoError(t, err)
	require.Len(t, wells["W-1"], 2)
	assert.InDelta(t, 990.0, wells["W-1"][1].OilVolume, 1e-9)
}

func TestParseRows_ClampsAndDrops(t *testing.T) {
	header := []string{"DATEPRD", "WELL_BORE_CODE", "ON_STREAM_HRS", "BORE_OIL_VOL"}
	rows := [][]string{
		{"2014-04-07", "W-1", "30", "1000"},  // hours over a day
		{"2014-04-08", "W-1", "-2", "-500"},  // negative readings
		{"2014-04-09", "W-1", "junk", "abc"}, // unparseable numerics
		{"not-a-date", "W-1", "24", "900"},   // skipped entirely
		{"2014-04-10", "", "24", "900"},      // empty well skipped
	}
	wells, err := ParseRows(header, rows, DefaultMapping())
	require.NoError(t, err)

	series := wells["W-1"]
	require.Len(t, series, 3)
	assert.InDelta(t, 24.0, series[0].OnStreamHours, 1e-9)
	assert.Zero(t, series[1].OnStreamHours)
	assert.Zero(t, series[1].OilVolume)
	assert.Zero(t, series[2].OnStreamHours)
	assert.Zero(t, series[2].OilVolume)
}

func TestParseRows_MergesDuplicateDays(t *testing.T) {
	header := []string{"DATEPRD", "WELL_BORE_CODE", "ON_STREAM_HRS", "BORE_OIL_VOL"}
	rows := [][]string{
		{"2014-04-07", "W-1", "10", "600"},
		{"2014-04-07", "W-1", "14", "400"},
	}
	wells, err := ParseRows(header, rows, DefaultMapping())
	require.NoError(t, err)

	series := wells["W-1"]
	require.Len(t, series, 1)
	assert.InDelta(t, 1000.0, series[0].OilVolume, 1e-9) // volumes sum
	assert.InDelta(t, 14.0, series[0].OnStreamHours, 1e-9)
}

func TestParseRows_SortsChronologically(t *testing.T) {
	header := []string{"DATEPRD", "WELL_BORE_CODE", "ON_STREAM_HRS", "BORE_OIL_VOL"}
	rows := [][]string{
		{"2014-04-09", "W-1", "24", "980"},
		{"2014-04-07", "W-1", "24", "1000"},
		{"2014-04-08", "W-1", "24", "990"},
	}
	wells, err := ParseRows(header, rows, DefaultMapping())
	require.NoError(t, err)

	series := wells["W-1"]
	require.Len(t, series, 3)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.True(t, series[1].Date.Before(series[2].Date))
}

func TestParseRows_MissingRequiredColumn(t *testing.T) {
	header := []string{"DATEPRD", "WELL_BORE_CODE", "BORE_GAS_VOL"}
	_, err := ParseRows(header, nil, DefaultMapping())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oil")
}

func TestParseDate_ExcelSerial(t *testing.T) {
	// Excel serial 41736 is 2014-04-07 (origin 1899-12-30).
	d, ok := parseDate("41736")
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, 4, 7, 0, 0, 0, 0, time.UTC), d)
}

func TestLoadMapping_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oil:\n  - MY_OIL_COL\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MY_OIL_COL"}, m.Oil)
	// untouched fields keep the defaults
	assert.Contains(t, m.Date, "DATEPRD")
}

func TestLoadMapping_MissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
