package main

import (
	"context"
	"fmt"
	"io"

	"nba_backtest/internal/backtest"
	"nba_backtest/internal/cache"
	"nba_backtest/internal/client"
	"nba_backtest/internal/config"
	"nba_backtest/internal/dataset"
	"nba_backtest/internal/predict"
	"nba_backtest/internal/repository"

	"github.com/rs/zerolog/log"
)

// app holds the collaborators shared by the commands
type app struct {
	cfg      *config.Config
	db       *repository.Database
	redis    *cache.RedisCache
	builder  dataset.TrainingSetBuilder
	recorder backtest.RunRecorder
}

// newApp connects to whatever the configuration asks for.
// withBuilder is false for commands that only read an existing dataset.
func newApp(ctx context.Context, cfg *config.Config, withBuilder bool) (*app, error) {
	a := &app{cfg: cfg}

	needsDB := cfg.NeedsDatabase() && (withBuilder || cfg.PersistPredictions)
	if needsDB {
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePort,
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		if cfg.PersistPredictions {
			a.recorder = db.Predictions
		}
	}

	if !withBuilder {
		return a, nil
	}

	switch cfg.TrainingSetSource {
	case config.SourceHTTP:
		a.builder = client.NewClient(cfg.FeatureServiceURL, cfg.FeatureServiceTimeout)
		log.Info().Str("url", cfg.FeatureServiceURL).Msg("Feature service client initialized")
	default:
		a.builder = a.db.TrainingSets
	}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			a.redis = redisCache
			a.builder = cache.NewCachedBuilder(a.builder, redisCache, cfg.CacheTTL())
			log.Info().Msg("Redis cache connected")
		}
	}

	return a, nil
}

func (a *app) newRunner(out io.Writer) *predict.Runner {
	runner := predict.NewRunner(nil)
	runner.SetOutput(out)
	return runner
}

func (a *app) newDriver(out io.Writer) *backtest.Driver {
	return backtest.NewDriver(a.builder, a.newRunner(out), backtest.Options{
		DataDir:         a.cfg.DataDir,
		ModelPath:       a.cfg.ModelPath(),
		CheckpointEvery: a.cfg.CheckpointEvery,
		Recorder:        a.recorder,
	})
}

// Close releases connections in reverse order of creation
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
