package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleRequest() Request {
	return Request{
		Categories: []string{"coffee_shop"},
		Location:   "Seattle",
		Filters:    models.FilterState{MinRating: models.Float64(4)},
	}
}

func sampleResults() []models.Business {
	return []models.Business{
		{PlaceID: "p1", Name: "Cafe One", Rating: models.Float64(4.5)},
		{PlaceID: "p2", Name: "Cafe Two", PriceLevel: models.Int(2)},
	}
}

func TestCache_SetThenGet(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, status, err := c.Get(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, status)

	require.NoError(t, c.Set(ctx, sampleRequest(), sampleResults()))
	assert.Equal(t, time.Minute, mr.TTL(Key(sampleRequest())))

	got, status, err := c.Get(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusHit, status)
	assert.Equal(t, sampleResults(), got)

	mr.FastForward(2 * time.Minute)
	_, status, err = c.Get(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, status)
}

func TestCache_BypassesOpenNow(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, 0, logger.NewTestLogger(t))
	ctx := context.Background()

	req := sampleRequest()
	req.Filters.OpenNow = models.Bool(true)

	require.NoError(t, c.Set(ctx, req, sampleResults()))
	assert.Empty(t, mr.Keys())

	got, status, err := c.Get(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StatusBypass, status)
	assert.Nil(t, got)

	req.Filters.OpenNow = models.Bool(false)
	assert.False(t, ShouldBypass(req))
}

func TestKey_Normalization(t *testing.T) {
	a := Request{
		Categories: []string{"Bar", "restaurant"},
		Location:   "  Downtown Austin ",
		Filters:    models.FilterState{Attributes: []string{"patio", "delivery"}},
	}
	b := Request{
		Categories: []string{"restaurant", "bar"},
		Location:   "downtown austin",
		Filters:    models.FilterState{Attributes: []string{"delivery", "patio"}},
	}
	assert.Equal(t, Key(a), Key(b))
	assert.Equal(t, []string{"patio", "delivery"}, a.Filters.Attributes)

	c := b
	c.Filters = models.FilterState{Attributes: []string{"delivery", "patio"}, MaxPriceLevel: models.Int(2)}
	assert.NotEqual(t, Key(b), Key(c))
	assert.Contains(t, Key(a), "search:results:")
}

func TestCache_UnreadableEntryIsDropped(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, time.Minute, logger.NewTestLogger(t))

	require.NoError(t, mr.Set(Key(sampleRequest()), "not json"))

	_, status, err := c.Get(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, status)
	assert.False(t, mr.Exists(Key(sampleRequest())))
}

func TestCache_GetRedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet(Key(sampleRequest())).SetErr(errors.New("connection refused"))

	_, status, err := c.Get(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, StatusError, status)

	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCacheUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetRedisNilIsMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet(Key(sampleRequest())).RedisNil()

	_, status, err := c.Get(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusMiss, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SetRedisFailure(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, time.Minute, logger.NewTestLogger(t))

	mr.SetError("READONLY You can't write against a read only replica.")

	err := c.Set(context.Background(), sampleRequest(), sampleResults())
	require.Error(t, err)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCacheUnavailable, stdErr.Code)
}
