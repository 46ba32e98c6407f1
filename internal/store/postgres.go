package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/volve-research/forecast-cli/internal/db"
	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/pipeline"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         UUID PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	wells      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS well_forecasts (
	id         UUID PRIMARY KEY,
	run_id     UUID NOT NULL REFERENCES runs(id),
	well       TEXT NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (run_id, well)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
CREATE INDEX IF NOT EXISTS idx_well_forecasts_run_id ON well_forecasts(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, source string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    model.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, source, status, wells, created_at, updated_at) VALUES ($1, $2, $3, 0, $4, $5)`,
		run.ID, run.Source, run.Status, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, wells int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, wells = $2, updated_at = $3 WHERE id = $4`,
		status, wells, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: complete run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, source, status, wells, created_at, updated_at FROM runs WHERE id = $1`, runID,
	).Scan(&run.ID, &run.Source, &run.Status, &run.Wells, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, wells, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += fmt.Sprintf(` AND source = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.Wells, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) SaveWellForecast(ctx context.Context, runID string, fc *pipeline.WellForecast) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal well forecast")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO well_forecasts (id, run_id, well, result, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id, well) DO UPDATE SET result = EXCLUDED.result`,
		uuid.NewString(), runID, fc.Well, payload, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: save well forecast")
}

func (s *PostgresStore) GetWellForecast(ctx context.Context, runID, well string) (*pipeline.WellForecast, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM well_forecasts WHERE run_id = $1 AND well = $2`, runID, well,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get well forecast")
	}
	var fc pipeline.WellForecast
	if err := json.Unmarshal(payload, &fc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal well forecast")
	}
	return &fc, nil
}

func (s *PostgresStore) ListWellForecasts(ctx context.Context, runID string) ([]pipeline.WellForecast, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT result FROM well_forecasts WHERE run_id = $1 ORDER BY well`, runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list well forecasts")
	}
	defer rows.Close()

	var out []pipeline.WellForecast
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan well forecast")
		}
		var fc pipeline.WellForecast
		if err := json.Unmarshal(payload, &fc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal well forecast")
		}
		out = append(out, fc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list well forecasts")
}
