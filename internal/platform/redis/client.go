// Package redis opens the shared go-redis client the redis-backed lease
// store hangs off.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"namelease/internal/platform/config"
)

// Client embeds the go-redis client so wiring code can hand the raw
// client to stores while owning connect and teardown here.
type Client struct {
	*redis.Client
}

// New connects a client from configuration and verifies it with a ping.
// Returns nil without error when no URL is configured, which callers
// treat as "redis not wired".
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout.Std()
	opts.ReadTimeout = cfg.ReadTimeout.Std()
	opts.WriteTimeout = cfg.WriteTimeout.Std()

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}
