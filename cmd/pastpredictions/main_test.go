package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"nba_backtest/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_FailureClosesLogFile(t *testing.T) {
	previous, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	t.Chdir(t.TempDir())
	logFile := filepath.Join(t.TempDir(), "logs", "pastpredictions.log")
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_FILE", logFile)

	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"run",
		"--season", "2019-2020", "--season-start", "10/22/2019",
		"--start", "2019-10-26", "--end", "2020-04-11",
	})

	err := execute()
	require.ErrorIs(t, err, models.ErrInvalidSeason)
	assert.Nil(t, logCloser)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error_kind":"invalid_season"`)
	assert.Contains(t, string(data), `"message":"Command failed"`)
}
