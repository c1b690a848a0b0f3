package main

import (
	"os"

	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// execute runs the root command, logs a failure and releases the log file on every path
func execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error().
			Err(err).
			Str("error_kind", models.ErrorKind(err)).
			Msg("Command failed")
	}

	if logCloser != nil {
		if cerr := logCloser.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close log file")
		}
		logCloser = nil
	}
	return err
}
