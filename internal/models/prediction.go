package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is one row of the predictions CSV
type PredictionRecord struct {
	Date               string  `csv:"Date" json:"date"`
	Home               string  `csv:"Home" json:"home"`
	Away               string  `csv:"Away" json:"away"`
	HomeWinProbability float64 `csv:"Home Team Win Probability" json:"home_win_probability"`
}

// PredictionRun summarizes one pass of the prediction runner
type PredictionRun struct {
	ID           uuid.UUID
	Season       string
	RangeStart   time.Time
	RangeEnd     time.Time
	InputPath    string
	OutputPath   string
	ModelName    string
	ModelVersion string
	Accuracy     AccuracyCounter
	StartedAt    time.Time
	Duration     time.Duration
}

// NewPredictionRun starts a run record with a fresh id
func NewPredictionRun(inputPath, outputPath string) *PredictionRun {
	return &PredictionRun{
		ID:         uuid.New(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		StartedAt:  time.Now().UTC(),
	}
}
