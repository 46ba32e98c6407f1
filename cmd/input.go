package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/volve-research/forecast-cli/internal/ingest"
	"github.com/volve-research/forecast-cli/internal/model"
)

// loadSeries reads a daily-production file into per-well chronological
// series, applying any configured column-mapping overrides.
func loadSeries(input, sheet string) (map[string][]model.DailyRecord, error) {
	mapping := ingest.DefaultMapping()
	if cfg.Ingest.MappingFile != "" {
		m, err := ingest.LoadMapping(cfg.Ingest.MappingFile)
		if err != nil {
			return nil, err
		}
		mapping = m
	}
	if sheet == "" {
		sheet = cfg.Ingest.SheetName
	}

	series, err := ingest.ReadFile(input, sheet, mapping)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", input)
	}

	zap.L().Info("loaded production series",
		zap.String("input", input),
		zap.Int("wells", len(series)),
	)
	return series, nil
}
