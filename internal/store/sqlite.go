package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/volve-research/forecast-cli/internal/model"
	"github.com/volve-research/forecast-cli/internal/pipeline"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	wells      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS well_forecasts (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	well       TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (run_id, well)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
CREATE INDEX IF NOT EXISTS idx_well_forecasts_run_id ON well_forecasts(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    model.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, wells, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		run.ID, run.Source, run.Status, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, wells int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, wells = ?, updated_at = ? WHERE id = ?`,
		status, wells, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, wells, created_at, updated_at FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Source, &run.Status, &run.Wells, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, wells, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.Wells, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) SaveWellForecast(ctx context.Context, runID string, fc *pipeline.WellForecast) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal well forecast")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO well_forecasts (id, run_id, well, result, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, well) DO UPDATE SET result = excluded.result`,
		uuid.NewString(), runID, fc.Well, string(payload), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: save well forecast")
}

func (s *SQLiteStore) GetWellForecast(ctx context.Context, runID, well string) (*pipeline.WellForecast, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM well_forecasts WHERE run_id = ? AND well = ?`, runID, well,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get well forecast")
	}
	var fc pipeline.WellForecast
	if err := json.Unmarshal([]byte(payload), &fc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal well forecast")
	}
	return &fc, nil
}

func (s *SQLiteStore) ListWellForecasts(ctx context.Context, runID string) ([]pipeline.WellForecast, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT result FROM well_forecasts WHERE run_id = ? ORDER BY well`, runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list well forecasts")
	}
	defer rows.Close()

	var out []pipeline.WellForecast
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan well forecast")
		}
		var fc pipeline.WellForecast
		if err := json.Unmarshal([]byte(payload), &fc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal well forecast")
		}
		out = append(out, fc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list well forecasts")
}
