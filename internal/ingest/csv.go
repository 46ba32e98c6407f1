package ingest

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/volve-research/forecast-cli/internal/model"
)

// ReadCSV parses a daily-production CSV export. The first row is the header;
// delimiter sniffing covers the semicolon variants some operator exports use.
func ReadCSV(path string, m ColumnMapping) (map[string][]model.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	return parseCSV(f, m)
}

func parseCSV(r io.Reader, m ColumnMapping) (map[string][]model.DailyRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}
	header = maybeResplit(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		rows = append(rows, maybeResplit(record))
	}

	return ParseRows(header, rows, m)
}

// maybeResplit handles semicolon-delimited exports that the comma reader
// sees as a single field per row.
func maybeResplit(record []string) []string {
	if len(record) != 1 {
		return record
	}
	return splitSemicolons(record[0])
}

func splitSemicolons(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
