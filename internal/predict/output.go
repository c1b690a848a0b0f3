package predict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nba_backtest/internal/models"

	"github.com/gocarina/gocsv"
)

// WritePredictions replaces path with records.
// The file is written next to its destination and renamed, so readers never see a torn file.
func WritePredictions(path string, records []models.PredictionRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".predictions-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if records == nil {
		records = []models.PredictionRecord{}
	}
	if err := gocsv.MarshalFile(&records, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on predictions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close predictions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move predictions into %s: %w", path, err)
	}
	return nil
}

// ReadPredictions loads a predictions CSV
func ReadPredictions(path string) ([]models.PredictionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingInputFile, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var records []models.PredictionRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to parse predictions %s: %w", path, err)
	}
	return records, nil
}
