package predict

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nba_backtest/internal/classifier"
	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const header = "Home,Away,W_PCT,REB,TOV,PLUS_MINUS,OFF_RATING,DEF_RATING,TS_PCT,Result,Date"

// fixedModel returns canned predictions and remembers what it was asked
type fixedModel struct {
	labels    []int
	homeProbs []float64
	seenRows  int
}

func (m *fixedModel) PredictLabels(X mat.Matrix) ([]int, error) {
	m.seenRows, _ = X.Dims()
	return m.labels, nil
}

func (m *fixedModel) PredictProbabilities(X mat.Matrix) (*mat.Dense, error) {
	probs := mat.NewDense(len(m.homeProbs), 2, nil)
	for i, p := range m.homeProbs {
		probs.Set(i, 0, 1-p)
		probs.Set(i, 1, p)
	}
	return probs, nil
}

func (m *fixedModel) Name() string    { return "fixed" }
func (m *fixedModel) Version() string { return "test" }

func loaderFor(c classifier.Classifier) ModelLoader {
	return func(string) (classifier.Classifier, error) { return c, nil }
}

func writeInput(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamesWithInfo.csv")
	content := header + "\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestRunner(c classifier.Classifier, out *bytes.Buffer) *Runner {
	r := NewRunner(loaderFor(c))
	r.SetOutput(out)
	return r
}

func TestRunner_SingleGameScenario(t *testing.T) {
	input := writeInput(t, "LAL,BOS,0.2,-0.1,0,0,0,0,0,1,2012-01-01")
	output := filepath.Join(t.TempDir(), "predictions.csv")
	var out bytes.Buffer

	report, err := newTestRunner(&fixedModel{labels: []int{1}, homeProbs: []float64{0.73}}, &out).
		Run(context.Background(), RunRequest{InputPath: input, OutputPath: output})
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	assert.Equal(t, models.PredictionRecord{Date: "2012-01-01", Home: "LAL", Away: "BOS", HomeWinProbability: 0.73}, report.Records[0])
	assert.Equal(t, 1, report.Accuracy.Correct)
	assert.Equal(t, 0, report.Accuracy.Incorrect)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Date,Home,Away,Home Team Win Probability\n2012-01-01,LAL,BOS,0.73\n", string(data))
	assert.Equal(t, "Accuracy:\n1\n", out.String())
}

func TestRunner_HalfCorrect(t *testing.T) {
	input := writeInput(t,
		"LAL,BOS,0.2,-0.1,0,0,0,0,0,1,2012-01-01",
		"MIA,NYK,-0.2,0.1,0,0,0,0,0,1,2012-01-02",
	)
	var out bytes.Buffer

	report, err := newTestRunner(&fixedModel{labels: []int{1, 0}, homeProbs: []float64{0.8, 0.4}}, &out).
		Run(context.Background(), RunRequest{InputPath: input, OutputPath: filepath.Join(t.TempDir(), "p.csv")})
	require.NoError(t, err)

	ratio, ok := report.Accuracy.Ratio()
	require.True(t, ok)
	assert.Equal(t, 0.5, ratio)
	assert.Equal(t, "Accuracy:\n0.5\n", out.String())
}

func TestRunner_EmptyInput(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "predictions.csv")
	var out bytes.Buffer
	model := &fixedModel{}

	report, err := newTestRunner(model, &out).
		Run(context.Background(), RunRequest{InputPath: input, OutputPath: output})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Games())
	assert.Equal(t, 0, model.seenRows, "model is not called without games")
	_, ok := report.Accuracy.Ratio()
	assert.False(t, ok)
	assert.Contains(t, out.String(), "no games to predict")

	records, err := ReadPredictions(output)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRunner_PreservesOrder(t *testing.T) {
	teams := []string{"ATL", "BKN", "CHA", "CHI", "CLE", "DAL", "DEN", "DET", "GSW", "HOU"}
	rows := make([]string, 0, len(teams))
	labels := make([]int, 0, len(teams))
	probs := make([]float64, 0, len(teams))
	for i, team := range teams {
		rows = append(rows, fmt.Sprintf("%s,OPP,%d,0,0,0,0,0,0,%d,2012-02-%02d", team, i, i%2, i+1))
		labels = append(labels, 1)
		probs = append(probs, float64(i)/10)
	}
	input := writeInput(t, rows...)
	output := filepath.Join(t.TempDir(), "predictions.csv")

	model := &fixedModel{labels: labels, homeProbs: probs}
	report, err := newTestRunner(model, &bytes.Buffer{}).
		Run(context.Background(), RunRequest{InputPath: input, OutputPath: output, CheckpointEvery: 3})
	require.NoError(t, err)
	assert.Equal(t, len(teams), model.seenRows)

	written, err := ReadPredictions(output)
	require.NoError(t, err)
	require.Len(t, written, len(teams))
	for i, team := range teams {
		assert.Equal(t, team, written[i].Home)
		assert.Equal(t, fmt.Sprintf("2012-02-%02d", i+1), written[i].Date)
		assert.InDelta(t, float64(i)/10, written[i].HomeWinProbability, 1e-12)
	}

	// Odd rows are home wins; every label is 1
	assert.Equal(t, 5, report.Accuracy.Correct)
	assert.Equal(t, 5, report.Accuracy.Incorrect)
}

func TestRunner_Errors(t *testing.T) {
	ctx := context.Background()
	good := "LAL,BOS,0.2,-0.1,0,0,0,0,0,1,2012-01-01"

	t.Run("missing input", func(t *testing.T) {
		_, err := newTestRunner(&fixedModel{}, &bytes.Buffer{}).Run(ctx, RunRequest{
			InputPath:  filepath.Join(t.TempDir(), "missing.csv"),
			OutputPath: filepath.Join(t.TempDir(), "p.csv"),
		})
		assert.ErrorIs(t, err, models.ErrMissingInputFile)
	})

	t.Run("model load failure", func(t *testing.T) {
		r := NewRunner(nil)
		r.SetOutput(&bytes.Buffer{})
		_, err := r.Run(ctx, RunRequest{
			InputPath:  writeInput(t, good),
			OutputPath: filepath.Join(t.TempDir(), "p.csv"),
			ModelPath:  filepath.Join(t.TempDir(), "finalized_model.json"),
		})
		assert.ErrorIs(t, err, models.ErrModelLoadFailure)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "games.csv")
		swapped := strings.Replace(header, "W_PCT,REB", "REB,W_PCT", 1)
		require.NoError(t, os.WriteFile(path, []byte(swapped+"\n"+good+"\n"), 0o644))

		_, err := newTestRunner(&fixedModel{labels: []int{1}, homeProbs: []float64{0.5}}, &bytes.Buffer{}).
			Run(ctx, RunRequest{InputPath: path, OutputPath: filepath.Join(t.TempDir(), "p.csv")})
		assert.ErrorIs(t, err, models.ErrSchemaMismatch)
	})

	t.Run("short model output", func(t *testing.T) {
		_, err := newTestRunner(&fixedModel{labels: []int{1}, homeProbs: []float64{0.5}}, &bytes.Buffer{}).
			Run(ctx, RunRequest{InputPath: writeInput(t, good, good), OutputPath: filepath.Join(t.TempDir(), "p.csv")})
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		output := filepath.Join(t.TempDir(), "p.csv")
		_, err := newTestRunner(&fixedModel{labels: []int{1}, homeProbs: []float64{0.5}}, &bytes.Buffer{}).
			Run(cancelled, RunRequest{InputPath: writeInput(t, good), OutputPath: output})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, output)
	})
}

func TestWritePredictions_FileMode(t *testing.T) {
	output := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, WritePredictions(output, []models.PredictionRecord{
		{Date: "2012-01-01", Home: "LAL", Away: "BOS", HomeWinProbability: 0.73},
	}))

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRunner_MetricsSeasonLabel(t *testing.T) {
	input := writeInput(t,
		"LAL,BOS,0.2,-0.1,0,0,0,0,0,1,2012-01-01",
		"MIA,NYK,-0.2,0.1,0,0,0,0,0,1,2012-01-02",
	)
	var out bytes.Buffer
	before := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues(adhocSeason))
	unlabeled := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues(""))

	_, err := newTestRunner(&fixedModel{labels: []int{1, 0}, homeProbs: []float64{0.8, 0.4}}, &out).
		Run(context.Background(), RunRequest{InputPath: input, OutputPath: filepath.Join(t.TempDir(), "p.csv")})
	require.NoError(t, err)

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues(adhocSeason)))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.PredictionAccuracy.WithLabelValues(adhocSeason)))
	assert.Equal(t, unlabeled, testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("")))
}
