// Package store persists forecast runs and per-well results behind a
// driver-selectable interface (sqlite for local use, postgres for shared
// deployments).
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/volve-research/forecast-cli/internal/config"
	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/pipeline"
)

// Store defines the persistence interface for forecast runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, wells int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error)

	// Per-well results
	SaveWellForecast(ctx context.Context, runID string, fc *pipeline.WellForecast) error
	GetWellForecast(ctx context.Context, runID, well string) (*pipeline.WellForecast, error)
	ListWellForecasts(ctx context.Context, runID string) ([]pipeline.WellForecast, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a store from config, defaulting to sqlite.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
