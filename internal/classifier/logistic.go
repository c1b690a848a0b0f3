package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// LogisticFormat identifies version 1 of the logistic-regression model document
const LogisticFormat = "logistic-regression/v1"

// LogisticDocument is the on-disk form of a logistic-regression classifier
type LogisticDocument struct {
	Format       string    `json:"format"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Threshold    float64   `json:"threshold,omitempty"`
	Checksum     string    `json:"checksum"`
}

// ComputeChecksum hashes the fields that determine predictions
func (d *LogisticDocument) ComputeChecksum() string {
	var b strings.Builder
	b.WriteString(d.Format)
	b.WriteByte('|')
	b.WriteString(strings.Join(d.Features, ","))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(d.Intercept, 'g', -1, 64))
	for _, c := range d.Coefficients {
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(d.Threshold, 'g', -1, 64))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Validate checks format, shape and checksum
func (d *LogisticDocument) Validate() error {
	if d.Format != LogisticFormat {
		return fmt.Errorf("unsupported format %q", d.Format)
	}
	if len(d.Features) == 0 {
		return fmt.Errorf("features are required")
	}
	if len(d.Coefficients) != len(d.Features) {
		return fmt.Errorf("%d coefficients for %d features", len(d.Coefficients), len(d.Features))
	}
	if d.Threshold < 0 || d.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside [0,1)", d.Threshold)
	}
	if d.Checksum != d.ComputeChecksum() {
		return fmt.Errorf("checksum mismatch")
	}
	return nil
}

// Logistic is a binary logistic-regression classifier
type Logistic struct {
	doc       LogisticDocument
	weights   *mat.VecDense
	threshold float64
}

// NewLogistic builds a classifier from a validated document
func NewLogistic(doc LogisticDocument) (*Logistic, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, doc.Name, err)
	}
	threshold := doc.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	return &Logistic{
		doc:       doc,
		weights:   mat.NewVecDense(len(doc.Coefficients), append([]float64(nil), doc.Coefficients...)),
		threshold: threshold,
	}, nil
}

// LoadLogistic reads a logistic-regression document from path
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, path, err)
	}

	var doc LogisticDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelLoadFailure, path, err)
	}

	model, err := NewLogistic(doc)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Str("model", doc.Name).
		Str("version", doc.Version).
		Int("features", len(doc.Features)).
		Msg("Logistic model loaded")

	return model, nil
}

// PredictProbabilities returns [P(away wins), P(home wins)] per row
func (l *Logistic) PredictProbabilities(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != l.weights.Len() {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", models.ErrSchemaMismatch, l.weights.Len(), cols)
	}

	scores := mat.NewVecDense(rows, nil)
	scores.MulVec(X, l.weights)

	probs := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		p := sigmoid(scores.AtVec(i) + l.doc.Intercept)
		probs.Set(i, 0, 1-p)
		probs.Set(i, HomeWinClass, p)
	}
	return probs, nil
}

// PredictLabels returns 1 where P(home wins) exceeds the threshold
func (l *Logistic) PredictLabels(X mat.Matrix) ([]int, error) {
	probs, err := l.PredictProbabilities(X)
	if err != nil {
		return nil, err
	}
	return labelsFromProbabilities(probs, l.threshold), nil
}

func (l *Logistic) Name() string       { return l.doc.Name }
func (l *Logistic) Version() string    { return l.doc.Version }
func (l *Logistic) Features() []string { return l.doc.Features }

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
