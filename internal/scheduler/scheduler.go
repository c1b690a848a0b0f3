package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nba_backtest/internal/backtest"
	"nba_backtest/internal/models"
	"nba_backtest/internal/predict"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrRefreshInProgress is returned by RunOnce while another refresh is running
var ErrRefreshInProgress = errors.New("refresh already in progress")

// PastPredictor runs one export-then-predict pass
type PastPredictor interface {
	MakePastPredictions(ctx context.Context, req backtest.Request) (*predict.Report, error)
}

// Scheduler re-runs the current season's backtest on a cron schedule
// so the predictions file keeps up with games played since the last run.
type Scheduler struct {
	spec   string
	season models.Season
	driver PastPredictor
	cron   *cron.Cron
	now    func() time.Time

	// mu serializes refreshes from cron and direct RunOnce calls
	mu sync.Mutex
}

// NewScheduler creates a scheduler for season; overlapping runs are skipped
func NewScheduler(spec string, season models.Season, driver PastPredictor) *Scheduler {
	return &Scheduler{
		spec:   spec,
		season: season,
		driver: driver,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:    time.Now,
	}
}

// Start schedules the refresh job and starts the cron runner
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info().Str("season", s.season.Label).Msg("Running scheduled refresh...")
		_, err := s.RunOnce(ctx)
		if errors.Is(err, ErrRefreshInProgress) {
			log.Warn().Str("season", s.season.Label).Msg("Previous refresh still running, skipping")
			return
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("error_kind", models.ErrorKind(err)).
				Msg("Scheduled refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Str("season", s.season.Label).
		Msg("Refresh scheduled")

	return nil
}

// Stop stops the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunOnce backtests the season from its earliest valid start up to today.
// It fails with ErrRefreshInProgress instead of overlapping a running refresh.
func (s *Scheduler) RunOnce(ctx context.Context) (*predict.Report, error) {
	if !s.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	window, err := Window(s.season, s.now())
	if err != nil {
		return nil, err
	}

	hr := backtest.HistoricalRun{Season: s.season, Range: window}
	return s.driver.MakePastPredictions(ctx, hr.Request())
}

// Window is [season start + MinDaysIntoSeason, today). Today's games are
// excluded since their results are not known yet.
func Window(season models.Season, now time.Time) (models.DateRange, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	window := models.DateRange{
		Start: season.Start.AddDate(0, 0, models.MinDaysIntoSeason),
		End:   today,
	}
	if err := window.Validate(season); err != nil {
		return models.DateRange{}, err
	}
	return window, nil
}
