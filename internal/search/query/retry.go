// internal/search/query/retry.go
package query

import (
	"context"
	"time"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	d := DefaultRetryConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	return c
}

// Backoff returns min(BaseDelay*2^attempt, MaxDelay).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 0; i < attempt && delay < c.MaxDelay; i++ {
		delay *= 2
	}
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// ParseWithRetry re-runs Parse on transient failures with capped exponential
// backoff. Non-transient errors return at once. When every attempt failed
// transiently, the query is parsed once more without session context.
func (p *Parser) ParseWithRetry(ctx context.Context, text, sessionID string) (*models.QueryParseResult, error) {
	var lastErr error

	for attempt := 0; attempt < p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.ParseRetries.Inc()
			if err := p.sleep(ctx, p.retry.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		result, err := p.Parse(ctx, text, sessionID)
		if err == nil {
			return result, nil
		}
		if !commonerrors.IsTransient(err) {
			return nil, err
		}
		lastErr = err

		p.logger.Warn("transient parse failure", map[string]interface{}{
			"attempt":   attempt + 1,
			"sessionId": sessionID,
			"error":     lastErr,
		})
	}

	metrics.ParseFallbacks.Inc()
	p.logger.Warn("retries exhausted, parsing without session context", map[string]interface{}{
		"sessionId": sessionID,
		"error":     lastErr,
	})
	return p.Parse(ctx, text, "")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
