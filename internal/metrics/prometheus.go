package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the backtester

var (
	// Export metrics
	TrainingSetRowsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_training_set_rows_exported_total",
			Help: "Total number of game rows written to dataset files",
		},
		[]string{"season"},
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_export_duration_seconds",
			Help:    "Duration of dataset exports in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	// Prediction metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_predictions_total",
			Help: "Total number of game predictions made",
		},
		[]string{"season"},
	)

	PredictionAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nba_prediction_accuracy_ratio",
			Help: "Accuracy of the latest prediction run",
		},
		[]string{"season"},
	)

	PredictionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_prediction_runs_total",
			Help: "Total number of prediction runs",
		},
		[]string{"status"},
	)

	PredictionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_prediction_run_duration_seconds",
			Help:    "Duration of prediction runs in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_feature_service_calls_total",
			Help: "Total number of feature service API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_feature_service_call_duration_seconds",
			Help:    "Duration of feature service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_kind"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_run_timestamp",
			Help: "Timestamp of last successful prediction run",
		},
	)
)

// RecordExport records a finished dataset export
func RecordExport(season string, rows int, duration float64) {
	TrainingSetRowsExported.WithLabelValues(season).Add(float64(rows))
	ExportDuration.Observe(duration)
}

// RecordPredictionRun records a finished prediction run.
// The accuracy gauge is left untouched when the run compared no games.
func RecordPredictionRun(season string, games int, accuracy float64, hasAccuracy bool, duration float64) {
	PredictionsTotal.WithLabelValues(season).Add(float64(games))
	if hasAccuracy {
		PredictionAccuracy.WithLabelValues(season).Set(accuracy)
	}
	PredictionRunsTotal.WithLabelValues("success").Inc()
	PredictionRunDuration.Observe(duration)
	LastSuccessfulRun.SetToCurrentTime()
}

// RecordFailedRun records a prediction run that returned an error
func RecordFailedRun() {
	PredictionRunsTotal.WithLabelValues("error").Inc()
}

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorKind string) {
	ErrorsTotal.WithLabelValues(component, errorKind).Inc()
}
