package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"nba_backtest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
	failSet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

type countingBuilder struct {
	records []models.GameRecord
	err     error
	calls   int
}

func (b *countingBuilder) GetTrainingSet(ctx context.Context, q models.TrainingSetQuery) ([]models.GameRecord, error) {
	b.calls++
	return b.records, b.err
}

func testQuery(t *testing.T) models.TrainingSetQuery {
	season, err := models.ParseSeason("2019-20", "10/22/2019")
	require.NoError(t, err)
	return models.TrainingSetQuery{Range: models.NewDateRange(2019, 10, 26, 2020, 4, 11), Season: season}
}

func testRecords() []models.GameRecord {
	return []models.GameRecord{
		{
			Date:    time.Date(2019, 10, 26, 0, 0, 0, 0, time.UTC),
			Home:    "LAL",
			Away:    "UTA",
			Stats:   models.StatDiffs{WinPct: 0.5, DefRating: -0.25},
			HomeWon: true,
		},
		{
			Date: time.Date(2019, 10, 27, 0, 0, 0, 0, time.UTC),
			Home: "POR",
			Away: "DAL",
		},
	}
}

func TestTrainingSetKey(t *testing.T) {
	assert.Equal(t, "training_set:2019-20:2019-10-22:2019-10-26:2020-04-11", TrainingSetKey(testQuery(t)))
}

func TestCachedBuilder_ReadThrough(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryCache()
	next := &countingBuilder{records: testRecords()}
	b := NewCachedBuilder(next, mem, time.Hour)

	first, err := b.GetTrainingSet(ctx, testQuery(t))
	require.NoError(t, err)
	second, err := b.GetTrainingSet(ctx, testQuery(t))
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls, "second call is served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, time.Hour, mem.ttls[TrainingSetKey(testQuery(t))])
}

func TestCachedBuilder_Degrades(t *testing.T) {
	ctx := context.Background()

	t.Run("cache unavailable", func(t *testing.T) {
		mem := newMemoryCache()
		mem.failGet = errors.New("connection refused")
		mem.failSet = errors.New("connection refused")
		next := &countingBuilder{records: testRecords()}

		records, err := NewCachedBuilder(next, mem, time.Hour).GetTrainingSet(ctx, testQuery(t))
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		mem := newMemoryCache()
		mem.data[TrainingSetKey(testQuery(t))] = []byte("not json")
		next := &countingBuilder{records: testRecords()}

		records, err := NewCachedBuilder(next, mem, time.Hour).GetTrainingSet(ctx, testQuery(t))
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("builder error is returned", func(t *testing.T) {
		boom := errors.New("database down")
		_, err := NewCachedBuilder(&countingBuilder{err: boom}, newMemoryCache(), time.Hour).GetTrainingSet(ctx, testQuery(t))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty result not cached", func(t *testing.T) {
		mem := newMemoryCache()
		_, err := NewCachedBuilder(&countingBuilder{}, mem, time.Hour).GetTrainingSet(ctx, testQuery(t))
		require.NoError(t, err)
		assert.Empty(t, mem.data)
	})
}

func TestRedisCache_PrefixKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		key      string
		expected string
	}{
		{"with prefix", "nba:", "training_set:x", "nba:training_set:x"},
		{"empty prefix", "", "key", "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &RedisCache{prefix: tt.prefix}
			assert.Equal(t, tt.expected, c.prefixKey(tt.key))
		})
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
