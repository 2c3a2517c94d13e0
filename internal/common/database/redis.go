// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// RedisClient owns the connection pool backing the provider result cache.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping checks connectivity, bounded by a short timeout of its own.
func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// PoolStats reports connection pool usage for the readiness endpoint.
func (c *RedisClient) PoolStats() map[string]interface{} {
	s := c.Client.PoolStats()
	return map[string]interface{}{
		"hits":       s.Hits,
		"misses":     s.Misses,
		"timeouts":   s.Timeouts,
		"totalConns": s.TotalConns,
		"idleConns":  s.IdleConns,
	}
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
