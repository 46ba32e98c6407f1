// Package config loads application configuration from YAML, environment,
// and defaults, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Every tunable the engine
// consumes is threaded from here as an explicit parameter; no package-level
// mutable constants.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	DCA       DCAConfig       `yaml:"dca" mapstructure:"dca"`
	Backtest  BacktestConfig  `yaml:"backtest" mapstructure:"backtest"`
	Scenario  ScenarioConfig  `yaml:"scenario" mapstructure:"scenario"`
	Emissions EmissionsConfig `yaml:"emissions" mapstructure:"emissions"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-result store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DCAConfig bounds the fitting engine.
type DCAConfig struct {
	MinSamples    int     `yaml:"min_samples" mapstructure:"min_samples"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	HoursFloor    float64 `yaml:"hours_floor" mapstructure:"hours_floor"`
}

// BacktestConfig configures the chronological holdout.
type BacktestConfig struct {
	Holdout int `yaml:"holdout" mapstructure:"holdout"`
}

// ScenarioConfig derives the rate cap from the historical distribution.
type ScenarioConfig struct {
	CapPercentile float64 `yaml:"cap_percentile" mapstructure:"cap_percentile"`
	CapMultiplier float64 `yaml:"cap_multiplier" mapstructure:"cap_multiplier"`
}

// EmissionsConfig sets the CO2 intensity proxy in kg CO2 per Sm3 oil.
type EmissionsConfig struct {
	Intensity float64 `yaml:"intensity" mapstructure:"intensity"`
}

// IngestConfig configures spreadsheet/CSV parsing.
type IngestConfig struct {
	MappingFile string `yaml:"mapping_file" mapstructure:"mapping_file"` // optional YAML column-mapping overrides
	SheetName   string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// BatchConfig bounds per-well concurrency.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the result-serving HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads config.yaml (optional), FORECAST_-prefixed environment
// variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "forecast.db")
	v.SetDefault("dca.min_samples", 10)
	v.SetDefault("dca.max_iterations", 2000)
	v.SetDefault("dca.hours_floor", 0.1)
	v.SetDefault("backtest.holdout", 90)
	v.SetDefault("scenario.cap_percentile", 0.95)
	v.SetDefault("scenario.cap_multiplier", 0.8)
	v.SetDefault("emissions.intensity", 70.0)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
