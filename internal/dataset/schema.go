package dataset

import (
	"fmt"

	"nba_backtest/internal/models"
)

// Descriptive and outcome columns
const (
	ColHome    = "Home"
	ColAway    = "Away"
	ColResult  = "Result"
	ColDate    = "Date"
	indexLabel = "Unnamed: 0"
)

// Schema names every column of a games dataset and fixes their order.
// Columns are always looked up by name; the order is only checked, never relied on.
type Schema struct {
	Home     string
	Away     string
	Features []string
	Outcome  string
	Date     string
}

// DefaultSchema is the layout written by the exporter:
// Home, Away, W_PCT .. TS_PCT, Result, Date
func DefaultSchema() Schema {
	features := make([]string, len(models.FeatureColumns))
	copy(features, models.FeatureColumns)
	return Schema{
		Home:     ColHome,
		Away:     ColAway,
		Features: features,
		Outcome:  ColResult,
		Date:     ColDate,
	}
}

// Columns returns every column name in file order
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Features)+4)
	cols = append(cols, s.Home, s.Away)
	cols = append(cols, s.Features...)
	cols = append(cols, s.Outcome, s.Date)
	return cols
}

// Validate compares a header row against the schema.
// A leading unnamed index column is accepted and reported through skipIndex.
func (s Schema) Validate(header []string) (skipIndex bool, err error) {
	if len(header) > 0 && (header[0] == "" || header[0] == indexLabel) {
		skipIndex = true
		header = header[1:]
	}

	expected := s.Columns()
	for i, want := range expected {
		if i >= len(header) {
			return skipIndex, fmt.Errorf("%w: missing column %q at position %d", models.ErrSchemaMismatch, want, i)
		}
		if header[i] != want {
			return skipIndex, fmt.Errorf("%w: expected column %q at position %d, found %q", models.ErrSchemaMismatch, want, i, header[i])
		}
	}
	if len(header) > len(expected) {
		return skipIndex, fmt.Errorf("%w: unexpected column %q at position %d", models.ErrSchemaMismatch, header[len(expected)], len(expected))
	}

	return skipIndex, nil
}
