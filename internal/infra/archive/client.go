// Package archive implements the paced, retrying HTTP client for the
// upstream recording archive.
//
// This package contains:
//   - Client: search and metadata calls with global request pacing
//   - RetryStrategy: exponential backoff calculator, one per call
//   - pacer: the shared minimum-spacing cursor
//   - the error taxonomy for archive failures
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/tapedeck/internal/core/domain"
	"github.com/vietddude/tapedeck/internal/metrics"
)

// Config holds archive client settings.
type Config struct {
	BaseURL           string
	RequestsPerSecond float64
	MaxRetries        int
	Timeout           time.Duration
	BaseDelay         time.Duration
	MaxDelay          time.Duration
}

// Cache is an optional read-through store for metadata responses.
// Lookups are best-effort: a miss or a broken cache just falls through
// to the upstream call.
type Cache interface {
	GetShow(ctx context.Context, identifier string) (*domain.Show, bool)
	SetShow(ctx context.Context, identifier string, show *domain.Show)
}

// Client talks to the archive's JSON API. All calls through one Client
// share a pacing cursor, so no two dispatches are closer together than
// 1/RequestsPerSecond regardless of how many goroutines call in.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pacer      *pacer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	cache      Cache
	log        *slog.Logger

	// Backoff wait, injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an archive client. Zero-valued config fields fall
// back to defaults suitable for the public archive.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://archive.org"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		pacer:      newPacer(cfg.RequestsPerSecond),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		log:        log.With("component", "archive"),
		sleep:      sleepContext,
	}
}

// SetCache attaches a metadata cache. Call before the client is shared
// across goroutines.
func (c *Client) SetCache(cache Cache) {
	c.cache = cache
}

// Search queries the archive search endpoint. fields selects which doc
// fields come back (nil means the archive's defaults), rows caps the
// result count.
func (c *Client) Search(ctx context.Context, query string, fields []string, rows int) (*domain.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("output", "json")
	if rows > 0 {
		params.Set("rows", strconv.Itoa(rows))
	}
	for _, f := range fields {
		params.Add("fl[]", f)
	}

	var result domain.SearchResult
	if err := c.getJSON(ctx, "search", "/advancedsearch.php?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Metadata fetches one show by identifier, reading through the cache
// when one is attached.
func (c *Client) Metadata(ctx context.Context, identifier string) (*domain.Show, error) {
	if c.cache != nil {
		if show, ok := c.cache.GetShow(ctx, identifier); ok {
			metrics.CacheHits.WithLabelValues("hit").Inc()
			return show, nil
		}
		metrics.CacheHits.WithLabelValues("miss").Inc()
	}

	var show domain.Show
	if err := c.getJSON(ctx, "metadata", "/metadata/"+url.PathEscape(identifier), &show); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetShow(ctx, identifier, &show)
	}
	return &show, nil
}

// getJSON runs the retry loop around paced dispatches. Transient
// failures are retried with exponential backoff on a fresh
// RetryStrategy; everything else is surfaced as-is.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	strategy := NewRetryStrategy(c.maxRetries, c.baseDelay, c.maxDelay)
	log := c.log.With("operation", op, "request_id", uuid.NewString())

	var lastErr error
	for {
		err := c.dispatch(ctx, op, path, out)
		if err == nil {
			if strategy.Attempt() > 0 {
				log.Info("request succeeded after retries", "attempts", strategy.Attempt())
			}
			return nil
		}

		if !IsRetryable(err) {
			log.Warn("request failed", "error", err)
			return err
		}

		lastErr = err
		if !strategy.ShouldRetry() {
			log.Error("retry budget exhausted", "attempts", strategy.Attempt(), "error", lastErr)
			return &ExhaustedError{Operation: op, Attempts: strategy.Attempt(), Err: lastErr}
		}

		delay := strategy.WaitTime()
		strategy.RecordFailure()
		metrics.ArchiveRetries.WithLabelValues(op).Inc()
		log.Warn("transient failure, retrying",
			"attempt", strategy.Attempt(), "delay", delay, "error", err)

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// dispatch performs one paced HTTP round trip and decodes the body.
func (c *Client) dispatch(ctx context.Context, op, path string, out any) error {
	if err := c.pacer.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	metrics.ArchiveRequests.WithLabelValues(op).Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ArchiveErrors.WithLabelValues(op, "transport").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	metrics.ArchiveLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		metrics.ArchiveErrors.WithLabelValues(op, errorType(statusErr)).Inc()
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ArchiveErrors.WithLabelValues(op, "decode").Inc()
		return &DecodeError{Operation: op, Err: err}
	}
	return nil
}
