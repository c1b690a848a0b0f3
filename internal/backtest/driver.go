package backtest

import (
	"context"
	"fmt"
	"path/filepath"

	"nba_backtest/internal/dataset"
	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"
	"nba_backtest/internal/predict"

	"github.com/rs/zerolog/log"
)

// RunRecorder stores finished prediction runs
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.PredictionRun, records []models.PredictionRecord) error
}

// Options configures a Driver
type Options struct {
	DataDir         string
	ModelPath       string
	CheckpointEvery int

	// Recorder persists each run when set
	Recorder RunRecorder
}

// Request is one export-then-predict pass
type Request struct {
	Range            models.DateRange
	Season           models.Season
	GameDataFilename string // defaults to dataset.DefaultFilename
	OutputFilename   string // defaults to predict.DefaultFilename
}

// Driver exports a season window and immediately backtests the model on it
type Driver struct {
	exporter *dataset.Exporter
	runner   *predict.Runner
	opts     Options
}

// NewDriver wires an exporter over builder to runner
func NewDriver(builder dataset.TrainingSetBuilder, runner *predict.Runner, opts Options) *Driver {
	return &Driver{
		exporter: dataset.NewExporter(builder),
		runner:   runner,
		opts:     opts,
	}
}

// MakePastPredictions writes the games dataset for req and predicts every game in it
func (d *Driver) MakePastPredictions(ctx context.Context, req Request) (*predict.Report, error) {
	gameFile := req.GameDataFilename
	if gameFile == "" {
		gameFile = dataset.DefaultFilename
	}
	outputFile := req.OutputFilename
	if outputFile == "" {
		outputFile = predict.DefaultFilename
	}

	exported, err := d.exporter.Export(ctx, dataset.ExportRequest{
		Range:    req.Range,
		Season:   req.Season,
		Dir:      d.opts.DataDir,
		Filename: gameFile,
	})
	if err != nil {
		return nil, err
	}

	report, err := d.runner.Run(ctx, predict.RunRequest{
		InputPath:       exported.Path,
		OutputPath:      filepath.Join(d.opts.DataDir, outputFile),
		ModelPath:       d.opts.ModelPath,
		Season:          req.Season.Label,
		CheckpointEvery: d.opts.CheckpointEvery,
	})
	if err != nil {
		return nil, err
	}
	report.Run.RangeStart = req.Range.Start
	report.Run.RangeEnd = req.Range.End

	if d.opts.Recorder != nil {
		if err := d.opts.Recorder.SaveRun(ctx, report.Run, report.Records); err != nil {
			metrics.RecordError("driver", models.ErrorKind(err))
			return report, fmt.Errorf("failed to save prediction run %s: %w", report.Run.ID, err)
		}
	}

	return report, nil
}

// BackfillResult is the outcome of one season in a backfill
type BackfillResult struct {
	Season string
	Report *predict.Report
	Err    error
}

// Backfill runs each historical season in turn. A failed season is logged and
// the remaining seasons still run.
func (d *Driver) Backfill(ctx context.Context, runs []HistoricalRun) []BackfillResult {
	results := make([]BackfillResult, 0, len(runs))
	for _, hr := range runs {
		if ctx.Err() != nil {
			results = append(results, BackfillResult{Season: hr.Season.Label, Err: ctx.Err()})
			continue
		}

		log.Info().
			Str("season", hr.Season.Label).
			Str("range", hr.Range.String()).
			Msg("Backfilling season")

		report, err := d.MakePastPredictions(ctx, hr.Request())
		if err != nil {
			log.Error().
				Err(err).
				Str("season", hr.Season.Label).
				Str("error_kind", models.ErrorKind(err)).
				Msg("Season backfill failed, continuing anyway...")
		}
		results = append(results, BackfillResult{Season: hr.Season.Label, Report: report, Err: err})
	}
	return results
}
