package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "forecast.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 10, cfg.DCA.MinSamples)
	assert.Equal(t, 2000, cfg.DCA.MaxIterations)
	assert.InDelta(t, 0.1, cfg.DCA.HoursFloor, 1e-9)
	assert.Equal(t, 90, cfg.Backtest.Holdout)
	assert.InDelta(t, 0.95, cfg.Scenario.CapPercentile, 1e-9)
	assert.InDelta(t, 0.8, cfg.Scenario.CapMultiplier, 1e-9)
	assert.InDelta(t, 70.0, cfg.Emissions.Intensity, 1e-9)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FORECAST_DCA_MIN_SAMPLES", "25")
	t.Setenv("FORECAST_SCENARIO_CAP_MULTIPLIER", "0.5")
	t.Setenv("FORECAST_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.DCA.MinSamples)
	assert.InDelta(t, 0.5, cfg.Scenario.CapMultiplier, 1e-9)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loudest", Format: "json"})
	assert.Error(t, err)
}
