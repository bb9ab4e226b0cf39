// Package redis caches archive metadata responses so repeat lookups of
// the same show skip the rate-limited upstream entirely.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/tapedeck/internal/core/domain"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string  `yaml:"url"`
	Password string  `yaml:"password"`
	CacheTTL float64 `yaml:"cache_ttl"` // seconds, 0 = 24h default
}

// Client wraps Redis as a best-effort metadata cache. Every failure is
// logged and swallowed; the cache must never make an archive call fail.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if log == nil {
		log = slog.Default()
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := 24 * time.Hour
	if cfg.CacheTTL > 0 {
		ttl = time.Duration(cfg.CacheTTL * float64(time.Second))
	}

	return &Client{
		rdb: rdb,
		ttl: ttl,
		log: log.With("component", "cache"),
	}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func showKey(identifier string) string {
	return fmt.Sprintf("show:%s", identifier)
}

// GetShow returns the cached metadata document for an identifier, or
// false on a miss.
func (c *Client) GetShow(ctx context.Context, identifier string) (*domain.Show, bool) {
	val, err := c.rdb.Get(ctx, showKey(identifier)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Debug("cache read failed", "identifier", identifier, "error", err)
		return nil, false
	}

	var show domain.Show
	if err := json.Unmarshal([]byte(val), &show); err != nil {
		c.log.Debug("cache entry undecodable, dropping", "identifier", identifier, "error", err)
		_ = c.rdb.Del(ctx, showKey(identifier)).Err()
		return nil, false
	}
	return &show, true
}

// SetShow stores a metadata document with the configured TTL.
func (c *Client) SetShow(ctx context.Context, identifier string, show *domain.Show) {
	data, err := json.Marshal(show)
	if err != nil {
		c.log.Debug("cache encode failed", "identifier", identifier, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, showKey(identifier), data, c.ttl).Err(); err != nil {
		c.log.Debug("cache write failed", "identifier", identifier, "error", err)
	}
}
