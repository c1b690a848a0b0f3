package classifier

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nba_backtest/internal/models"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// LightGBM wraps a binary LightGBM text model
type LightGBM struct {
	name     string
	features []string
	predict  func(X *mat.Dense) (mat.Matrix, error)
}

// LoadLightGBM reads a model saved with booster.save_model
func LoadLightGBM(path string) (*LightGBM, error) {
	features, err := readFeatureNames(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, path, err)
	}

	model, err := lightgbm.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, path, err)
	}

	predictor := lightgbm.NewPredictor(model)
	predictor.SetDeterministic(true)

	log.Info().
		Str("path", path).
		Int("features", len(features)).
		Msg("LightGBM model loaded")

	return &LightGBM{
		name:     filepath.Base(path),
		features: features,
		predict: func(X *mat.Dense) (mat.Matrix, error) {
			return predictor.Predict(X)
		},
	}, nil
}

// PredictProbabilities returns [P(away wins), P(home wins)] per row
func (g *LightGBM) PredictProbabilities(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != len(g.features) {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", models.ErrSchemaMismatch, len(g.features), cols)
	}
	out, err := g.predict(mat.DenseCopyOf(X))
	if err != nil {
		return nil, fmt.Errorf("lightgbm prediction failed: %w", err)
	}
	if r, _ := out.Dims(); r != rows {
		return nil, fmt.Errorf("lightgbm returned %d rows for %d inputs", r, rows)
	}

	probs := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		p := out.At(i, 0)
		probs.Set(i, 0, 1-p)
		probs.Set(i, HomeWinClass, p)
	}
	return probs, nil
}

// PredictLabels returns 1 where P(home wins) exceeds one half
func (g *LightGBM) PredictLabels(X mat.Matrix) ([]int, error) {
	probs, err := g.PredictProbabilities(X)
	if err != nil {
		return nil, err
	}
	return labelsFromProbabilities(probs, 0.5), nil
}

func (g *LightGBM) Name() string       { return g.name }
func (g *LightGBM) Version() string    { return "lightgbm" }
func (g *LightGBM) Features() []string { return g.features }

// readFeatureNames returns the feature_names entry of the model header
func readFeatureNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Tree=") {
			break
		}
		if names, ok := strings.CutPrefix(line, "feature_names="); ok {
			features := strings.Fields(names)
			if len(features) == 0 {
				break
			}
			return features, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("model header has no feature_names")
}
