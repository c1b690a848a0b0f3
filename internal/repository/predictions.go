package repository

import (
	"context"
	"fmt"
	"time"

	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository persists prediction runs and their rows
type PredictionRepository struct {
	db *Database
}

// SaveRun stores a run summary and every predicted row in one transaction
func (r *PredictionRepository) SaveRun(ctx context.Context, run *models.PredictionRun, records []models.PredictionRecord) error {
	if run == nil {
		return fmt.Errorf("prediction run cannot be nil")
	}
	if err := validateRun(run, records); err != nil {
		return fmt.Errorf("prediction run validation failed: %w", err)
	}

	start := time.Now()
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var accuracy *float64
	if ratio, ok := run.Accuracy.Ratio(); ok {
		accuracy = &ratio
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO prediction_runs (
			id, season, range_start, range_end, input_path, output_path,
			model_name, model_version, games, correct, incorrect, accuracy,
			started_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		run.ID, nullString(run.Season), nullTime(run.RangeStart), nullTime(run.RangeEnd), run.InputPath, run.OutputPath,
		run.ModelName, nullString(run.ModelVersion), len(records), run.Accuracy.Correct, run.Accuracy.Incorrect, accuracy,
		run.StartedAt, run.Duration.Milliseconds(),
	)
	if err != nil {
		metrics.RecordDBQuery("insert", "prediction_runs", "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to insert prediction run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(`
			INSERT INTO past_predictions (run_id, row_number, game_date, home_team, away_team, home_win_probability)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.ID, i+1, rec.Date, rec.Home, rec.Away, rec.HomeWinProbability)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		metrics.RecordDBQuery("insert", "past_predictions", "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to insert predictions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit prediction run: %w", err)
	}

	metrics.RecordDBQuery("insert", "past_predictions", "success", time.Since(start).Seconds())
	log.Info().
		Str("run_id", run.ID.String()).
		Int("rows", len(records)).
		Msg("Prediction run saved")
	return nil
}

// validateRun ensures run data is consistent before insertion
func validateRun(run *models.PredictionRun, records []models.PredictionRecord) error {
	if run.ID == uuid.Nil {
		return fmt.Errorf("run id is required")
	}
	if run.ModelName == "" {
		return fmt.Errorf("model_name is required")
	}
	if run.Accuracy.Total() != len(records) {
		return fmt.Errorf("accuracy covers %d games but run has %d rows", run.Accuracy.Total(), len(records))
	}
	for i, rec := range records {
		if rec.HomeWinProbability < 0 || rec.HomeWinProbability > 1 {
			return fmt.Errorf("row %d: home win probability %v outside [0,1]", i+1, rec.HomeWinProbability)
		}
		if _, err := time.Parse(models.DateLayout, rec.Date); err != nil {
			return fmt.Errorf("row %d: invalid date %q", i+1, rec.Date)
		}
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
