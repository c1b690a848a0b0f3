package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nba_backtest/internal/dataset"
	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

// CachedBuilder serves training sets from the cache and falls back to the wrapped builder.
// Cache failures are logged and never fail the request.
type CachedBuilder struct {
	next  dataset.TrainingSetBuilder
	cache Cache
	ttl   time.Duration
}

// NewCachedBuilder wraps next with a read-through cache
func NewCachedBuilder(next dataset.TrainingSetBuilder, c Cache, ttl time.Duration) *CachedBuilder {
	return &CachedBuilder{next: next, cache: c, ttl: ttl}
}

// TrainingSetKey is the cache key of a query
func TrainingSetKey(q models.TrainingSetQuery) string {
	return fmt.Sprintf("training_set:%s:%s:%s:%s",
		q.Season.Label,
		q.Season.Start.Format(models.DateLayout),
		q.Range.Start.Format(models.DateLayout),
		q.Range.End.Format(models.DateLayout),
	)
}

// GetTrainingSet implements dataset.TrainingSetBuilder
func (b *CachedBuilder) GetTrainingSet(ctx context.Context, q models.TrainingSetQuery) ([]models.GameRecord, error) {
	key := TrainingSetKey(q)

	var cached []models.GameRecord
	err := GetJSON(ctx, b.cache, key, &cached)
	switch {
	case err == nil:
		metrics.RecordCacheHit()
		log.Debug().Str("key", key).Int("count", len(cached)).Msg("Training set served from cache")
		return cached, nil
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheMiss()
	default:
		metrics.RecordCacheMiss()
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed - falling back to builder")
	}

	records, err := b.next.GetTrainingSet(ctx, q)
	if err != nil {
		return nil, err
	}

	// Empty results are not cached so a later run can pick up new games
	if len(records) > 0 {
		if err := SetJSON(ctx, b.cache, key, records, b.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}

	return records, nil
}
