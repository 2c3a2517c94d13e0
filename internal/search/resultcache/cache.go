// internal/search/resultcache/cache.go
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/metrics"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

const (
	DefaultTTL = 15 * time.Minute

	keyPrefix = "search:results:"
)

type Status string

const (
	StatusHit    Status = "hit"
	StatusMiss   Status = "miss"
	StatusBypass Status = "bypass"
	StatusError  Status = "error"
	// StatusStored is reported by callers after a successful Set.
	StatusStored Status = "stored"
)

// Request identifies one provider search.
type Request struct {
	Categories []string
	Location   string
	Filters    models.FilterState
}

type cachedResults struct {
	Results  []models.Business `json:"results"`
	CachedAt time.Time         `json:"cachedAt"`
}

// Cache stores provider results in redis so that repeated base searches do
// not hit the provider. It never influences parsing or refinement.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func New(client redis.Cmdable, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cache{client: client, ttl: ttl, logger: log, now: time.Now}
}

// ShouldBypass reports whether req needs live data. Open-now answers go
// stale faster than the cache TTL.
func ShouldBypass(req Request) bool {
	return req.Filters.OpenNow != nil && *req.Filters.OpenNow
}

// Key derives the redis key for req. Categories and attributes are sorted
// and text is lowercased, so equivalent requests share a key.
func Key(req Request) string {
	categories := make([]string, len(req.Categories))
	for i, c := range req.Categories {
		categories[i] = strings.ToLower(strings.TrimSpace(c))
	}
	sort.Strings(categories)

	filters := req.Filters.Clone()
	if filters.Attributes != nil {
		sort.Strings(filters.Attributes)
	}

	normalized, _ := json.Marshal(struct {
		Categories []string           `json:"businessType"`
		Location   string             `json:"location"`
		Filters    models.FilterState `json:"filters"`
	}{
		Categories: categories,
		Location:   strings.ToLower(strings.TrimSpace(req.Location)),
		Filters:    filters,
	})

	sum := sha256.Sum256(normalized)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get looks req up. A redis failure is reported as StatusError with a
// CACHE_UNAVAILABLE error; callers may carry on without the cache.
func (c *Cache) Get(ctx context.Context, req Request) ([]models.Business, Status, error) {
	if ShouldBypass(req) {
		return c.done(nil, StatusBypass, nil)
	}

	key := Key(req)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return c.done(nil, StatusMiss, nil)
	}
	if err != nil {
		c.logger.Warn("Result cache read failed", map[string]interface{}{"error": err.Error()})
		return c.done(nil, StatusError, commonerrors.NewCacheUnavailableError(err))
	}

	var cached cachedResults
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{"key": key})
		_ = c.client.Del(ctx, key).Err()
		return c.done(nil, StatusMiss, nil)
	}

	c.logger.Debug("Result cache hit", map[string]interface{}{
		"results":  len(cached.Results),
		"cachedAt": cached.CachedAt,
	})
	return c.done(cached.Results, StatusHit, nil)
}

// Set stores results for req with the cache TTL. Bypassed requests are
// never stored.
func (c *Cache) Set(ctx context.Context, req Request, results []models.Business) error {
	if ShouldBypass(req) {
		return nil
	}

	data, err := json.Marshal(cachedResults{Results: results, CachedAt: c.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cached results: %w", err)
	}

	if err := c.client.Set(ctx, Key(req), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Result cache write failed", map[string]interface{}{"error": err.Error()})
		return commonerrors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *Cache) done(results []models.Business, status Status, err error) ([]models.Business, Status, error) {
	metrics.ResultCacheRequests.WithLabelValues(string(status)).Inc()
	return results, status, err
}
