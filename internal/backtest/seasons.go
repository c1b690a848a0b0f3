package backtest

import (
	"fmt"

	"nba_backtest/internal/models"
)

// HistoricalRun is a season window that has been backtested before
type HistoricalRun struct {
	Season models.Season
	Range  models.DateRange
}

// Request builds the driver request with per-season filenames
func (h HistoricalRun) Request() Request {
	return Request{
		Range:            h.Range,
		Season:           h.Season,
		GameDataFilename: fmt.Sprintf("gamesWithInfo%s.csv", h.Season.Label),
		OutputFilename:   fmt.Sprintf("predictions%s.csv", h.Season.Label),
	}
}

// Regular-season windows, oldest first. 2011-12 started late after the lockout.
var historicalWindows = []struct {
	label       string
	seasonStart string
	start, end  [3]int
}{
	{"2011-12", "12/25/2011", [3]int{2011, 12, 28}, [3]int{2012, 4, 26}},
	{"2012-13", "11/01/2012", [3]int{2012, 11, 5}, [3]int{2013, 4, 17}},
	{"2013-14", "10/29/2013", [3]int{2013, 11, 1}, [3]int{2014, 4, 16}},
	{"2014-15", "10/28/2014", [3]int{2014, 10, 31}, [3]int{2015, 4, 15}},
	{"2015-16", "10/27/2015", [3]int{2015, 10, 30}, [3]int{2016, 4, 13}},
	{"2019-20", "10/22/2019", [3]int{2019, 10, 26}, [3]int{2020, 4, 11}},
	{"2020-21", "12/24/2020", [3]int{2020, 12, 28}, [3]int{2021, 5, 16}},
}

// Catalogue returns every known historical window, oldest first
func Catalogue() []HistoricalRun {
	runs := make([]HistoricalRun, 0, len(historicalWindows))
	for _, w := range historicalWindows {
		season, err := models.ParseSeason(w.label, w.seasonStart)
		if err != nil {
			panic(fmt.Sprintf("bad historical season %s: %v", w.label, err))
		}
		runs = append(runs, HistoricalRun{
			Season: season,
			Range:  models.NewDateRange(w.start[0], w.start[1], w.start[2], w.end[0], w.end[1], w.end[2]),
		})
	}
	return runs
}

// SelectSeasons returns the catalogue entries for labels, in catalogue order.
// No labels selects the whole catalogue.
func SelectSeasons(labels []string) ([]HistoricalRun, error) {
	all := Catalogue()
	if len(labels) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(labels))
	for _, l := range labels {
		wanted[l] = true
	}

	var selected []HistoricalRun
	for _, hr := range all {
		if wanted[hr.Season.Label] {
			selected = append(selected, hr)
			delete(wanted, hr.Season.Label)
		}
	}
	for l := range wanted {
		return nil, fmt.Errorf("%w: no historical window for season %q", models.ErrInvalidSeason, l)
	}
	return selected, nil
}
