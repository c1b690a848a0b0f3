package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Training set sources
const (
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
)

// Config holds all application configuration
type Config struct {
	// Files
	DataDir          string `envconfig:"DATA_DIR" default:"Data"`
	ModelDir         string `envconfig:"MODEL_DIR" default:"SavedModels"`
	ModelFile        string `envconfig:"MODEL_FILE" default:"finalized_model.json"`
	GameDataFilename string `envconfig:"GAME_DATA_FILENAME" default:"gamesWithInfo.csv"`
	OutputFilename   string `envconfig:"OUTPUT_FILENAME" default:"predictions.csv"`

	// Rewrite the partial predictions file every N rows (0 disables)
	CheckpointEvery int `envconfig:"CHECKPOINT_EVERY" default:"0"`

	// Training set source
	TrainingSetSource     string        `envconfig:"TRAINING_SET_SOURCE" default:"postgres"`
	FeatureServiceURL     string        `envconfig:"FEATURE_SERVICE_URL" default:"http://localhost:8000/api/v1"`
	FeatureServiceTimeout time.Duration `envconfig:"FEATURE_SERVICE_TIMEOUT" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"nba_predictions"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"nba_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL (in seconds)
	CacheTTLTrainingSet int `envconfig:"CACHE_TTL_TRAINING_SET" default:"86400"` // 24 hours

	PersistPredictions bool `envconfig:"PERSIST_PREDICTIONS" default:"false"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:""`

	// Scheduler
	CurrentSeason      string `envconfig:"CURRENT_SEASON" default:""`
	CurrentSeasonStart string `envconfig:"CURRENT_SEASON_START" default:""`
	RefreshCron        string `envconfig:"REFRESH_CRON" default:"0 6 * * *"`

	// Monitoring
	MetricsPort int `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.TrainingSetSource {
	case SourcePostgres:
		if c.DatabasePassword == "" && c.IsProduction() {
			return fmt.Errorf("DATABASE_PASSWORD is required in production")
		}
	case SourceHTTP:
		if c.FeatureServiceURL == "" {
			return fmt.Errorf("FEATURE_SERVICE_URL is required when TRAINING_SET_SOURCE=http")
		}
	default:
		return fmt.Errorf("TRAINING_SET_SOURCE must be %q or %q, got %q", SourcePostgres, SourceHTTP, c.TrainingSetSource)
	}

	if !strings.HasSuffix(c.GameDataFilename, ".csv") {
		return fmt.Errorf("GAME_DATA_FILENAME must end in .csv")
	}
	if !strings.HasSuffix(c.OutputFilename, ".csv") {
		return fmt.Errorf("OUTPUT_FILENAME must end in .csv")
	}

	if c.CheckpointEvery < 0 {
		return fmt.Errorf("CHECKPOINT_EVERY must not be negative")
	}

	if (c.CurrentSeason == "") != (c.CurrentSeasonStart == "") {
		return fmt.Errorf("CURRENT_SEASON and CURRENT_SEASON_START must be set together")
	}

	return nil
}

// ModelPath returns the path of the serialized classifier
func (c *Config) ModelPath() string {
	return filepath.Join(c.ModelDir, c.ModelFile)
}

// DataPath joins a dataset filename onto the data directory
func (c *Config) DataPath(filename string) string {
	return filepath.Join(c.DataDir, filename)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// CacheTTL returns the training set cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLTrainingSet) * time.Second
}

// NeedsDatabase reports whether any configured component talks to PostgreSQL
func (c *Config) NeedsDatabase() bool {
	return c.TrainingSetSource == SourcePostgres || c.PersistPredictions
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
