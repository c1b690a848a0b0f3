package main

import (
	"io"

	"nba_backtest/internal/config"
	"nba_backtest/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "pastpredictions",
	Short:         "Backtest the NBA game model on past seasons",
	Long:          `pastpredictions exports historical games with their stat differences and scores a trained classifier against the real outcomes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		closer, err := logging.Setup(logging.Options{
			Development: cfg.IsDevelopment(),
			Level:       cfg.LogLevel,
			File:        cfg.LogFile,
		})
		if err != nil {
			return err
		}
		logCloser = closer

		log.Debug().
			Str("env", cfg.AppEnv).
			Str("source", cfg.TrainingSetSource).
			Msg("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
}
