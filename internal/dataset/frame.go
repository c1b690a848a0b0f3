package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"nba_backtest/internal/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a games table split the way the prediction runner consumes it
type Dataset struct {
	Schema Schema

	// Descriptive holds Home, Away and Date
	Descriptive dataframe.DataFrame
	// Features holds the z-score differences, one column per schema feature
	Features dataframe.DataFrame
	// Outcomes is the ground-truth label of every row
	Outcomes []int
}

// Len returns the number of games
func (d *Dataset) Len() int {
	return len(d.Outcomes)
}

// Game returns the descriptive fields of row i
func (d *Dataset) Game(i int) (date, home, away string) {
	return d.Descriptive.Col(d.Schema.Date).Elem(i).String(),
		d.Descriptive.Col(d.Schema.Home).Elem(i).String(),
		d.Descriptive.Col(d.Schema.Away).Elem(i).String()
}

// FeatureMatrix copies the feature slice into a rows x features matrix.
// Row i of the matrix is row i of the dataset.
func (d *Dataset) FeatureMatrix() *mat.Dense {
	rows, cols := d.Len(), len(d.Schema.Features)
	if rows == 0 {
		return nil
	}
	m := mat.NewDense(rows, cols, nil)
	for j, name := range d.Schema.Features {
		for i, v := range d.Features.Col(name).Float() {
			m.Set(i, j, v)
		}
	}
	return m
}

// FromRecords builds a dataframe in schema order from training-set records
func FromRecords(schema Schema, records []models.GameRecord) dataframe.DataFrame {
	n := len(records)
	homes := make([]string, n)
	aways := make([]string, n)
	dates := make([]string, n)
	results := make([]int, n)
	features := make([][]float64, len(schema.Features))
	for j := range features {
		features[j] = make([]float64, n)
	}

	for i, rec := range records {
		homes[i] = rec.Home
		aways[i] = rec.Away
		dates[i] = rec.Date.Format(models.DateLayout)
		results[i] = rec.Outcome()
		for j, v := range rec.Stats.Values() {
			features[j][i] = v
		}
	}

	cols := make([]series.Series, 0, len(schema.Features)+4)
	cols = append(cols,
		series.New(homes, series.String, schema.Home),
		series.New(aways, series.String, schema.Away),
	)
	for j, name := range schema.Features {
		cols = append(cols, series.New(features[j], series.Float, name))
	}
	cols = append(cols,
		series.New(results, series.Int, schema.Outcome),
		series.New(dates, series.String, schema.Date),
	)

	return dataframe.New(cols...)
}

// WriteCSV writes df to path, creating the parent directory if needed
func WriteCSV(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return fmt.Errorf("failed to build dataframe: %w", df.Err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a games CSV and validates it against schema
func Load(path string, schema Schema) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingInputFile, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, schema)
}

// Read parses a games CSV from r
func Read(r io.Reader, schema Schema) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse games csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", models.ErrSchemaMismatch)
	}
	if _, err := schema.Validate(records[0]); err != nil {
		return nil, err
	}

	ds := &Dataset{Schema: schema}
	if len(records) == 1 {
		ds.Descriptive = dataframe.New(
			series.New([]string{}, series.String, schema.Home),
			series.New([]string{}, series.String, schema.Away),
			series.New([]string{}, series.String, schema.Date),
		)
		ds.Features = emptyFeatures(schema)
		return ds, nil
	}

	types := map[string]series.Type{
		schema.Home:    series.String,
		schema.Away:    series.String,
		schema.Date:    series.String,
		schema.Outcome: series.Float,
	}
	for _, name := range schema.Features {
		types[name] = series.Float
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to load games dataframe: %w", df.Err)
	}

	ds.Descriptive = df.Select([]string{schema.Home, schema.Away, schema.Date})
	ds.Features = df.Select(schema.Features)
	if ds.Descriptive.Err != nil || ds.Features.Err != nil {
		return nil, fmt.Errorf("%w: failed to slice dataset", models.ErrSchemaMismatch)
	}

	for _, name := range schema.Features {
		if i := firstNaN(ds.Features.Col(name).Float()); i >= 0 {
			return nil, fmt.Errorf("%w: non-numeric %s on row %d", models.ErrSchemaMismatch, name, i+1)
		}
	}

	outcomes := df.Col(schema.Outcome).Float()
	ds.Outcomes = make([]int, len(outcomes))
	for i, v := range outcomes {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("%w: %s must be 0 or 1, found %v on row %d", models.ErrSchemaMismatch, schema.Outcome, v, i+1)
		}
		ds.Outcomes[i] = int(v)
	}

	return ds, nil
}

func emptyFeatures(schema Schema) dataframe.DataFrame {
	cols := make([]series.Series, len(schema.Features))
	for j, name := range schema.Features {
		cols[j] = series.New([]float64{}, series.Float, name)
	}
	return dataframe.New(cols...)
}

func firstNaN(values []float64) int {
	for i, v := range values {
		if math.IsNaN(v) {
			return i
		}
	}
	return -1
}
