package ingest

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/volve-research/forecast-cli/internal/model"
)

// ReadXLSX parses a daily-production sheet from an XLSX workbook. An empty
// sheetName selects the first sheet.
func ReadXLSX(path, sheetName string, m ColumnMapping) (map[string][]model.DailyRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, eris.Errorf("ingest: sheet %q in %s is empty", sheet.Name, path)
	}

	return ParseRows(header, rows, m)
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name == "" {
		if len(f.Sheets) == 0 {
			return nil, eris.New("ingest: workbook has no sheets")
		}
		return f.Sheets[0], nil
	}
	for _, s := range f.Sheets {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, eris.Errorf("ingest: sheet %q not found", name)
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out
}

// ReadFile dispatches on the file extension: .xlsx workbooks or CSV
// otherwise.
func ReadFile(path, sheetName string, m ColumnMapping) (map[string][]model.DailyRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, sheetName, m)
	}
	return ReadCSV(path, m)
}
