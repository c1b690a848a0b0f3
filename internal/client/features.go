package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nba_backtest/internal/metrics"
	"nba_backtest/internal/models"

	"github.com/rs/zerolog/log"
)

const trainingSetEndpoint = "training-set"

// Client talks to the stats feature service that computes per-game z-score differences
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a feature service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	// Season-long windows are heavy on the upstream; keep concurrency low
	rateLimiter := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SetRetryDelay overrides the base backoff delay
func (c *Client) SetRetryDelay(d time.Duration) {
	c.retryDelay = d
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feature service request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, err := c.do(ctx, url, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Retry on network errors
			lastErr = err
			continue
		}

		switch status {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("size", len(body)).
				Msg("Feature service request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("feature service returned retryable status %d: %s", status, string(body))
			log.Warn().
				Str("url", url).
				Int("status", status).
				Int("attempt", attempt+1).
				Msg("Received retryable error, will retry")
			continue

		default:
			return nil, fmt.Errorf("feature service returned status %d: %s", status, string(body))
		}
	}

	return nil, lastErr
}

// do sends a single request while holding a rate limiter slot
func (c *Client) do(ctx context.Context, url string, params map[string]string) ([]byte, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nba-backtest/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("feature service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// GetTrainingSet fetches the games of a season window with their stat differences
func (c *Client) GetTrainingSet(ctx context.Context, q models.TrainingSetQuery) ([]models.GameRecord, error) {
	start := time.Now()
	params := map[string]string{
		"start":        q.Range.Start.Format(models.DateLayout),
		"end":          q.Range.End.Format(models.DateLayout),
		"season":       q.Season.Label,
		"season_start": q.Season.StartDate(),
	}

	body, err := c.get(ctx, trainingSetEndpoint, params)
	if err != nil {
		metrics.RecordAPICall(trainingSetEndpoint, "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordAPICall(trainingSetEndpoint, "success", time.Since(start).Seconds())

	var inputs []models.GameRecordInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode training set: %w", err)
	}

	records := make([]models.GameRecord, 0, len(inputs))
	dropped := 0
	for i := range inputs {
		rec, err := inputs[i].ToGameRecord()
		if err != nil {
			return nil, fmt.Errorf("training set row %d: %w", i+1, err)
		}
		// Games outside [start, end) do not belong to this window
		if !q.Range.Contains(rec.Date) {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		log.Warn().
			Str("range", q.Range.String()).
			Int("dropped", dropped).
			Msg("Feature service returned games outside the requested range")
	}

	log.Info().
		Str("season", q.Season.Label).
		Str("range", q.Range.String()).
		Int("count", len(records)).
		Msg("Fetched training set from feature service")

	return records, nil
}
