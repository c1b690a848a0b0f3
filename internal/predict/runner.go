package predict

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"nba_backtest/internal/classifier"
	"nba_backtest/internal/dataset"
	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultFilename is the predictions filename used when the caller gives none
const DefaultFilename = "predictions.csv"

// adhocSeason labels metrics for runs that name no season
const adhocSeason = "adhoc"

// ModelLoader opens the classifier stored at path
type ModelLoader func(path string) (classifier.Classifier, error)

// RunRequest describes one prediction pass
type RunRequest struct {
	InputPath  string
	OutputPath string
	ModelPath  string

	// Season labels logs and metrics; optional
	Season string

	// CheckpointEvery rewrites the partial output every N rows; 0 writes once at the end
	CheckpointEvery int
}

// Report is the outcome of a prediction pass
type Report struct {
	Run      *models.PredictionRun
	Records  []models.PredictionRecord
	Accuracy models.AccuracyCounter
}

// Games returns the number of predicted games
func (r *Report) Games() int {
	return len(r.Records)
}

// Runner turns a games dataset into win probabilities and an accuracy figure
type Runner struct {
	loadModel ModelLoader
	schema    dataset.Schema
	out       io.Writer
}

// NewRunner creates a runner; a nil loader uses classifier.Load
func NewRunner(loader ModelLoader) *Runner {
	if loader == nil {
		loader = classifier.Load
	}
	return &Runner{
		loadModel: loader,
		schema:    dataset.DefaultSchema(),
		out:       os.Stdout,
	}
}

// SetOutput redirects the printed accuracy report
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// Run predicts every game of req.InputPath and writes req.OutputPath
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Report, error) {
	report, err := r.run(ctx, req)
	if err != nil {
		metrics.RecordFailedRun()
		metrics.RecordError("runner", models.ErrorKind(err))
		return nil, err
	}
	return report, nil
}

func (r *Runner) run(ctx context.Context, req RunRequest) (*Report, error) {
	run := models.NewPredictionRun(req.InputPath, req.OutputPath)
	run.Season = req.Season

	ds, err := dataset.Load(req.InputPath, r.schema)
	if err != nil {
		return nil, err
	}

	model, err := r.loadModel(req.ModelPath)
	if err != nil {
		return nil, err
	}
	if err := classifier.CheckFeatures(model, r.schema.Features); err != nil {
		return nil, err
	}
	run.ModelName = model.Name()
	run.ModelVersion = model.Version()

	log.Info().
		Str("run_id", run.ID.String()).
		Str("input", req.InputPath).
		Str("model", run.ModelName).
		Int("games", ds.Len()).
		Msg("Running predictions")

	report := &Report{Run: run, Records: make([]models.PredictionRecord, 0, ds.Len())}

	if ds.Len() > 0 {
		if err := r.predict(ctx, ds, model, req, report); err != nil {
			return nil, err
		}
	}

	if err := WritePredictions(req.OutputPath, report.Records); err != nil {
		return nil, err
	}

	run.Accuracy = report.Accuracy
	run.Duration = time.Since(run.StartedAt)
	r.printAccuracy(report)

	season := req.Season
	if season == "" {
		season = adhocSeason
	}
	ratio, ok := report.Accuracy.Ratio()
	metrics.RecordPredictionRun(season, report.Games(), ratio, ok, run.Duration.Seconds())

	event := log.Info().
		Str("run_id", run.ID.String()).
		Str("output", req.OutputPath).
		Int("games", report.Games()).
		Int("correct", report.Accuracy.Correct).
		Int("incorrect", report.Accuracy.Incorrect).
		Dur("duration", run.Duration)
	if ok {
		event = event.Float64("accuracy", ratio)
	}
	event.Msg("Predictions complete")

	return report, nil
}

// predict makes one batched call per output kind, then walks rows in input order.
// Row i of the dataset, the feature matrix and both predictions is the same game.
func (r *Runner) predict(ctx context.Context, ds *dataset.Dataset, model classifier.Classifier, req RunRequest, report *Report) error {
	X := ds.FeatureMatrix()

	labels, err := model.PredictLabels(X)
	if err != nil {
		return fmt.Errorf("failed to predict labels: %w", err)
	}
	probs, err := model.PredictProbabilities(X)
	if err != nil {
		return fmt.Errorf("failed to predict probabilities: %w", err)
	}

	n := ds.Len()
	if rows, _ := probs.Dims(); len(labels) != n || rows != n {
		return fmt.Errorf("model returned %d labels and %d probability rows for %d games", len(labels), rows, n)
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		date, home, away := ds.Game(i)
		report.Records = append(report.Records, models.PredictionRecord{
			Date:               date,
			Home:               home,
			Away:               away,
			HomeWinProbability: probs.At(i, classifier.HomeWinClass),
		})
		report.Accuracy.Record(labels[i], ds.Outcomes[i])

		if req.CheckpointEvery > 0 && (i+1)%req.CheckpointEvery == 0 && i+1 < n {
			if err := WritePredictions(req.OutputPath, report.Records); err != nil {
				return err
			}
			log.Debug().Int("rows", i+1).Str("output", req.OutputPath).Msg("Checkpoint written")
		}
	}

	return nil
}

func (r *Runner) printAccuracy(report *Report) {
	fmt.Fprintln(r.out, "Accuracy:")
	ratio, ok := report.Accuracy.Ratio()
	if !ok {
		fmt.Fprintln(r.out, "no games to predict")
		return
	}
	fmt.Fprintln(r.out, ratio)
}
