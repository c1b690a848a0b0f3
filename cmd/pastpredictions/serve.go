package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"
	"nba_backtest/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveRunNow bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh the current season's predictions on a schedule and expose metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CurrentSeason == "" {
			return fmt.Errorf("%w: CURRENT_SEASON and CURRENT_SEASON_START are required to serve", models.ErrInvalidSeason)
		}
		season, err := models.ParseSeason(cfg.CurrentSeason, cfg.CurrentSeasonStart)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		var health healthCheck
		if a.db != nil {
			health = a.db.Health
		}
		srv := newMetricsServer(cfg.MetricsPort, newRouter(health))
		go func() {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && err != errServerClosed {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()

		go trackUptime(ctx, time.Now())

		sched := scheduler.NewScheduler(cfg.RefreshCron, season, a.newDriver(cmd.OutOrStdout()))
		if err := sched.Start(ctx); err != nil {
			return err
		}

		if serveRunNow {
			if _, err := sched.RunOnce(ctx); err != nil {
				log.Error().
					Err(err).
					Str("error_kind", models.ErrorKind(err)).
					Msg("Initial refresh failed, continuing anyway...")
			}
		}

		<-ctx.Done()
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")

		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}

		log.Info().Msg("Shutdown complete")
		return nil
	},
}

func trackUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(started).Seconds())
		case <-ctx.Done():
			return
		}
	}
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "refresh once at startup before waiting for the schedule")
}
