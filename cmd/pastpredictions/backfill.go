package main

import (
	"errors"
	"fmt"

	"nba_backtest/internal/backtest"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var backfillSeasons []string

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backtest every known historical season, or the ones given with --season",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := backtest.SelectSeasons(backfillSeasons)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		results := a.newDriver(cmd.OutOrStdout()).Backfill(ctx, runs)
		return summarizeBackfill(results)
	},
}

// summarizeBackfill logs one line per season and joins the failures
func summarizeBackfill(results []backtest.BackfillResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("season %s: %w", r.Season, r.Err))
			continue
		}
		event := log.Info().
			Str("season", r.Season).
			Int("games", r.Report.Games())
		if ratio, ok := r.Report.Accuracy.Ratio(); ok {
			event = event.Float64("accuracy", ratio)
		}
		event.Msg("Season backfilled")
	}
	return errors.Join(errs...)
}

func init() {
	backfillCmd.Flags().StringSliceVar(&backfillSeasons, "season", nil, "season label to backfill, yyyy-yy (repeatable)")
}
