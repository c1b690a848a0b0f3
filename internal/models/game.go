package models

import (
	"fmt"
	"time"
)

// Feature columns, in dataset order
const (
	ColWinPct    = "W_PCT"
	ColRebounds  = "REB"
	ColTurnovers = "TOV"
	ColPlusMinus = "PLUS_MINUS"
	ColOffRating = "OFF_RATING"
	ColDefRating = "DEF_RATING"
	ColTrueShoot = "TS_PCT"
)

// FeatureColumns lists the z-score difference columns fed to the classifier
var FeatureColumns = []string{
	ColWinPct, ColRebounds, ColTurnovers, ColPlusMinus, ColOffRating, ColDefRating, ColTrueShoot,
}

// StatDiffs holds home-minus-away z-score differences for one game
type StatDiffs struct {
	WinPct    float64 `json:"W_PCT" db:"w_pct"`
	Rebounds  float64 `json:"REB" db:"reb"`
	Turnovers float64 `json:"TOV" db:"tov"`
	PlusMinus float64 `json:"PLUS_MINUS" db:"plus_minus"`
	OffRating float64 `json:"OFF_RATING" db:"off_rating"`
	DefRating float64 `json:"DEF_RATING" db:"def_rating"`
	TrueShoot float64 `json:"TS_PCT" db:"ts_pct"`
}

// Values returns the differences in FeatureColumns order
func (s StatDiffs) Values() []float64 {
	return []float64{s.WinPct, s.Rebounds, s.Turnovers, s.PlusMinus, s.OffRating, s.DefRating, s.TrueShoot}
}

// GameRecord is one row of the training set: who played, the stat gaps, and who won
type GameRecord struct {
	Date    time.Time
	Home    string
	Away    string
	Stats   StatDiffs
	HomeWon bool
}

// Outcome returns the ground-truth label (1 = home team won)
func (g GameRecord) Outcome() int {
	if g.HomeWon {
		return 1
	}
	return 0
}

// GameRecordInput is the feature-service wire form of a GameRecord
type GameRecordInput struct {
	Date     string `json:"Date"` // yyyy-mm-dd
	HomeTeam string `json:"Home"`
	AwayTeam string `json:"Away"`
	StatDiffs
	Result int `json:"Result"`
}

// ToGameRecord converts the wire form, rejecting malformed dates and outcomes
func (gi *GameRecordInput) ToGameRecord() (GameRecord, error) {
	date, err := time.Parse(DateLayout, gi.Date)
	if err != nil {
		return GameRecord{}, fmt.Errorf("invalid game date %q: %w", gi.Date, err)
	}
	if gi.Result != 0 && gi.Result != 1 {
		return GameRecord{}, fmt.Errorf("invalid result %d for %s vs %s on %s", gi.Result, gi.HomeTeam, gi.AwayTeam, gi.Date)
	}
	if gi.HomeTeam == "" || gi.AwayTeam == "" {
		return GameRecord{}, fmt.Errorf("missing team code on %s", gi.Date)
	}

	return GameRecord{
		Date:    date,
		Home:    gi.HomeTeam,
		Away:    gi.AwayTeam,
		Stats:   gi.StatDiffs,
		HomeWon: gi.Result == 1,
	}, nil
}

// TrainingSetQuery selects the games a training-set builder returns
type TrainingSetQuery struct {
	Range  DateRange
	Season Season
}

// Validate checks the season and range together
func (q TrainingSetQuery) Validate() error {
	if q.Season.Label == "" {
		return fmt.Errorf("%w: season label is required", ErrInvalidSeason)
	}
	return q.Range.Validate(q.Season)
}
