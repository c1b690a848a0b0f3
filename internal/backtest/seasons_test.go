package backtest

import (
	"testing"

	"nba_backtest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue(t *testing.T) {
	runs := Catalogue()
	require.Len(t, runs, 7)

	for i, hr := range runs {
		assert.NoError(t, hr.Range.Validate(hr.Season), hr.Season.Label)
		if i > 0 {
			assert.True(t, runs[i-1].Season.Start.Before(hr.Season.Start), "oldest first")
		}
	}

	first := runs[0]
	assert.Equal(t, "2011-12", first.Season.Label)
	assert.Equal(t, "12/25/2011", first.Season.StartDate())
	assert.Equal(t, "2011-12-28..2012-04-26", first.Range.String())
}

func TestHistoricalRun_Request(t *testing.T) {
	runs, err := SelectSeasons([]string{"2014-15"})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	req := runs[0].Request()
	assert.Equal(t, "gamesWithInfo2014-15.csv", req.GameDataFilename)
	assert.Equal(t, "predictions2014-15.csv", req.OutputFilename)
	assert.Equal(t, "2014-10-31..2015-04-15", req.Range.String())
}

func TestSelectSeasons(t *testing.T) {
	all, err := SelectSeasons(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(Catalogue()))

	_, err = SelectSeasons([]string{"2017-18"})
	assert.ErrorIs(t, err, models.ErrInvalidSeason)
}
