package main

import (
	"nba_backtest/internal/backtest"
	"nba_backtest/internal/models"

	"github.com/spf13/cobra"
)

var runFlags struct {
	start, end          string
	season, seasonStart string
	gamesFile           string
	outputFile          string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export a date range of one season and predict every game in it",
	Example: `  pastpredictions run --season 2011-12 --season-start 12/25/2011 \
    --start 2011-12-28 --end 2012-04-26`,
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := models.ParseSeason(runFlags.season, runFlags.seasonStart)
		if err != nil {
			return err
		}
		window, err := models.ParseDateRange(runFlags.start, runFlags.end)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		gamesFile := runFlags.gamesFile
		if gamesFile == "" {
			gamesFile = cfg.GameDataFilename
		}
		outputFile := runFlags.outputFile
		if outputFile == "" {
			outputFile = cfg.OutputFilename
		}

		_, err = a.newDriver(cmd.OutOrStdout()).MakePastPredictions(ctx, backtest.Request{
			Range:            window,
			Season:           season,
			GameDataFilename: gamesFile,
			OutputFilename:   outputFile,
		})
		return err
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.start, "start", "", "first game date, yyyy-mm-dd (inclusive)")
	f.StringVar(&runFlags.end, "end", "", "last game date, yyyy-mm-dd (exclusive)")
	f.StringVar(&runFlags.season, "season", "", "season label, yyyy-yy")
	f.StringVar(&runFlags.seasonStart, "season-start", "", "first day of the regular season, mm/dd/yyyy")
	f.StringVar(&runFlags.gamesFile, "games-file", "", "dataset filename inside DATA_DIR (default GAME_DATA_FILENAME)")
	f.StringVar(&runFlags.outputFile, "output-file", "", "predictions filename inside DATA_DIR (default OUTPUT_FILENAME)")
	for _, name := range []string{"start", "end", "season", "season-start"} {
		_ = runCmd.MarkFlagRequired(name)
	}
}
