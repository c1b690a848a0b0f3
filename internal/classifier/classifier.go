package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nba_backtest/internal/models"

	"gonum.org/v1/gonum/mat"
)

// HomeWinClass is the probability column holding P(home team wins)
const HomeWinClass = 1

// Classifier is a pre-trained binary game-outcome model.
// Both predictions return one row per input row, in input order.
type Classifier interface {
	// PredictLabels returns the discrete label (0 or 1) of every row
	PredictLabels(X mat.Matrix) ([]int, error)
	// PredictProbabilities returns an n x 2 matrix of class probabilities
	PredictProbabilities(X mat.Matrix) (*mat.Dense, error)
	Name() string
	Version() string
}

// FeatureAware is implemented by classifiers that record their training columns
type FeatureAware interface {
	Features() []string
}

// CheckFeatures fails with ErrSchemaMismatch when c was trained on other columns
func CheckFeatures(c Classifier, features []string) error {
	fa, ok := c.(FeatureAware)
	if !ok {
		return nil
	}
	want := fa.Features()
	if len(want) != len(features) {
		return fmt.Errorf("%w: model %s expects %d features, dataset has %d", models.ErrSchemaMismatch, c.Name(), len(want), len(features))
	}
	for i := range want {
		if want[i] != features[i] {
			return fmt.Errorf("%w: model %s expects feature %q at position %d, dataset has %q",
				models.ErrSchemaMismatch, c.Name(), want[i], i, features[i])
		}
	}
	return nil
}

// Load opens a serialized classifier, picking the format from the file extension:
// .json for logistic-regression documents, .txt for LightGBM text models.
func Load(path string) (Classifier, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadLogistic(path)
	case ".txt":
		return LoadLightGBM(path)
	default:
		return nil, fmt.Errorf("%w: unsupported model format %q (pickle files must be exported to .json or .txt)", models.ErrModelLoadFailure, ext)
	}
}

// labelsFromProbabilities thresholds the home-win column
func labelsFromProbabilities(probs *mat.Dense, threshold float64) []int {
	rows, _ := probs.Dims()
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		if probs.At(i, HomeWinClass) > threshold {
			labels[i] = 1
		}
	}
	return labels
}
