package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"janseva/internal/platform/config"
)

// Client wraps go-redis for the scheme cache. The only consumer is the
// read-through store in internal/scheme, which tolerates a dead connection,
// so the wrapper stays thin.
type Client struct {
	*redis.Client
}

// New connects using the configured URL, or returns (nil, nil) when no URL
// is set so the caller can skip the cache entirely.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Fail startup on an unreachable cache rather than degrading silently
	// for the whole process lifetime.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports connection liveness for the readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
