package models

import "errors"

// Error kinds reported by the exporter, runner and driver.
// Callers match them with errors.Is; producers wrap them with context.
var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidSeason    = errors.New("invalid season")
	ErrMissingInputFile = errors.New("missing input file")
	ErrModelLoadFailure = errors.New("model load failure")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrEmptyResultSet   = errors.New("empty result set")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidDateRange, "invalid_date_range"},
	{ErrInvalidSeason, "invalid_season"},
	{ErrMissingInputFile, "missing_input_file"},
	{ErrModelLoadFailure, "model_load_failure"},
	{ErrSchemaMismatch, "schema_mismatch"},
	{ErrEmptyResultSet, "empty_result_set"},
}

// ErrorKind returns a stable label for err, used in logs and metrics.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
