package repository

import (
	"context"
	"fmt"
	"time"

	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

// TrainingSetRepository reads precomputed game features
type TrainingSetRepository struct {
	db *Database
}

// GetTrainingSet returns every game of the season in [start, end), oldest first
func (r *TrainingSetRepository) GetTrainingSet(ctx context.Context, q models.TrainingSetQuery) ([]models.GameRecord, error) {
	start := time.Now()
	query := `
		SELECT game_date, home_team, away_team,
		       w_pct, reb, tov, plus_minus, off_rating, def_rating, ts_pct,
		       home_won
		FROM training_games
		WHERE season = $1
		  AND game_date >= $2
		  AND game_date < $3
		ORDER BY game_date ASC, id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, q.Season.Label, q.Range.Start, q.Range.End)
	if err != nil {
		metrics.RecordDBQuery("select", "training_games", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to query training set: %w", err)
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		s := &rec.Stats
		if err := rows.Scan(
			&rec.Date, &rec.Home, &rec.Away,
			&s.WinPct, &s.Rebounds, &s.Turnovers, &s.PlusMinus, &s.OffRating, &s.DefRating, &s.TrueShoot,
			&rec.HomeWon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training game: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training games: %w", err)
	}

	metrics.RecordDBQuery("select", "training_games", "success", time.Since(start).Seconds())
	log.Debug().
		Str("season", q.Season.Label).
		Str("range", q.Range.String()).
		Int("count", len(records)).
		Msg("Training set retrieved")

	return records, nil
}
