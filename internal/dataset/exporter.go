package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultFilename is the dataset filename used when the caller gives none
const DefaultFilename = "gamesWithInfo.csv"

// TrainingSetBuilder returns the games in a date window with their stat differences.
// Implementations must return games in a stable order; the exporter preserves it.
type TrainingSetBuilder interface {
	GetTrainingSet(ctx context.Context, q models.TrainingSetQuery) ([]models.GameRecord, error)
}

// ExportRequest describes one dataset export
type ExportRequest struct {
	Range    models.DateRange
	Season   models.Season
	Dir      string
	Filename string
}

// ExportResult reports where the dataset landed
type ExportResult struct {
	Path string
	Rows int
}

// Exporter writes training sets to CSV
type Exporter struct {
	builder TrainingSetBuilder
	schema  Schema
}

// NewExporter creates an exporter backed by builder
func NewExporter(builder TrainingSetBuilder) *Exporter {
	return &Exporter{builder: builder, schema: DefaultSchema()}
}

// Export fetches every game in the request range and writes it to Dir/Filename
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	start := time.Now()

	filename := req.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	if !strings.HasSuffix(filename, ".csv") {
		return nil, fmt.Errorf("dataset filename %q must end in .csv", filename)
	}

	query := models.TrainingSetQuery{Range: req.Range, Season: req.Season}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("season", req.Season.Label).
		Str("season_start", req.Season.StartDate()).
		Str("range", req.Range.String()).
		Msg("Fetching training set")

	records, err := e.builder.GetTrainingSet(ctx, query)
	if err != nil {
		metrics.RecordError("exporter", models.ErrorKind(err))
		return nil, fmt.Errorf("failed to get training set for %s: %w", req.Season.Label, err)
	}
	if len(records) == 0 {
		metrics.RecordError("exporter", models.ErrorKind(models.ErrEmptyResultSet))
		return nil, fmt.Errorf("%w: no games between %s for season %s", models.ErrEmptyResultSet, req.Range, req.Season.Label)
	}

	path := filepath.Join(req.Dir, filename)
	if err := WriteCSV(FromRecords(e.schema, records), path); err != nil {
		return nil, err
	}

	metrics.RecordExport(req.Season.Label, len(records), time.Since(start).Seconds())
	log.Info().
		Str("path", path).
		Int("rows", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Training set exported")

	return &ExportResult{Path: path, Rows: len(records)}, nil
}
