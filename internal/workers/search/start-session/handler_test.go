package startsession

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/config"
	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/resultcache"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/session"
)

var seattle = models.Coordinates{Lat: 47.6062, Lng: -122.3321}

func createTestHandler(t *testing.T) (*Handler, *session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewTestLogger(t)
	store := session.NewStore(time.Minute, log)
	cache := resultcache.New(client, time.Minute, log)
	return NewHandler(LoadConfig(config.WorkerConfig{}), store, cache, nil, log), store, mr
}

func business(id string, rating float64) models.Business {
	return models.Business{PlaceID: id, Name: id, Location: seattle, Rating: models.Float64(rating)}
}

func createInput(results ...models.Business) *Input {
	return &Input{
		Query:        "coffee near downtown seattle",
		BusinessType: []string{"coffee_shop"},
		Location:     "downtown seattle",
		SearchCenter: seattle,
		BaseResults:  results,
	}
}

func TestHandler_Execute_StoresProvidedResults(t *testing.T) {
	h, store, _ := createTestHandler(t)

	output, err := h.Execute(context.Background(), createInput(business("a", 4.5), business("b", 3.9)))
	require.NoError(t, err)

	assert.NotEmpty(t, output.SessionID)
	assert.Equal(t, 2, output.ResultCount)
	assert.Equal(t, resultcache.StatusStored, output.CacheStatus)

	sess, ok := store.Get(output.SessionID)
	require.True(t, ok)
	assert.Equal(t, output.StateVersion, sess.StateVersion)
	require.Len(t, sess.SearchHistory, 1)
	assert.False(t, sess.SearchHistory[0].IsRefinement)
	assert.Equal(t, "coffee near downtown seattle", sess.SearchHistory[0].QueryText)
	assert.Equal(t, 2, sess.SearchHistory[0].ResultCount)
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	h, store, _ := createTestHandler(t)

	_, err := h.Execute(context.Background(), createInput(business("a", 4.5), business("b", 3.9)))
	require.NoError(t, err)

	// Same search with different casing and no results of its own.
	input := createInput()
	input.BusinessType = []string{"Coffee_Shop"}
	input.Location = "Downtown Seattle"

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, resultcache.StatusHit, output.CacheStatus)
	assert.Equal(t, 2, output.ResultCount)

	sess, ok := store.Get(output.SessionID)
	require.True(t, ok)
	assert.Len(t, sess.BaseSearch.BaseResults, 2)
}

func TestHandler_Execute_CacheMiss(t *testing.T) {
	h, _, _ := createTestHandler(t)

	output, err := h.Execute(context.Background(), createInput())
	require.NoError(t, err)
	assert.Equal(t, resultcache.StatusMiss, output.CacheStatus)
	assert.Equal(t, 0, output.ResultCount)
}

func TestHandler_Execute_OpenNowBypassesCache(t *testing.T) {
	h, _, mr := createTestHandler(t)

	input := createInput(business("a", 4.5))
	input.Filters = &models.FilterState{OpenNow: models.Bool(true)}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, resultcache.StatusBypass, output.CacheStatus)
	assert.Empty(t, mr.Keys())
}

func TestHandler_Execute_InitialFilters(t *testing.T) {
	h, store, _ := createTestHandler(t)

	input := createInput(business("a", 4.5), business("b", 3.9), business("c", 4.1))
	input.Filters = &models.FilterState{MinRating: models.Float64(4)}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, output.ResultCount)

	sess, ok := store.Get(output.SessionID)
	require.True(t, ok)
	require.NotNil(t, sess.CurrentFilters.MinRating)
	assert.Equal(t, 4.0, *sess.CurrentFilters.MinRating)
	assert.Len(t, sess.BaseSearch.BaseResults, 3)
}

func TestHandler_Execute_RejectsOutOfRangeFilters(t *testing.T) {
	h, store, _ := createTestHandler(t)

	input := createInput(business("a", 4.5))
	input.Filters = &models.FilterState{MaxPriceLevel: models.Int(7)}

	output, err := h.Execute(context.Background(), input)
	require.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeInvalidFilter, stdErr.Code)
	assert.Equal(t, 0, store.Stats().ActiveSessions)
}

func TestHandler_Execute_CacheUnavailable(t *testing.T) {
	h, _, mr := createTestHandler(t)
	mr.SetError("LOADING redis is loading the dataset")

	output, err := h.Execute(context.Background(), createInput(business("a", 4.5)))
	require.NoError(t, err)
	assert.Equal(t, resultcache.StatusError, output.CacheStatus)
	assert.Equal(t, 1, output.ResultCount)

	output, err = h.Execute(context.Background(), createInput())
	require.NoError(t, err)
	assert.Equal(t, resultcache.StatusError, output.CacheStatus)
}

func TestDecodeInput(t *testing.T) {
	var input Input
	err := decodeInput(`{
		"businessType": ["gym"],
		"location": "boston",
		"searchCenter": {"lat": 42.36, "lng": -71.06},
		"baseResults": [{"placeId": "p1", "name": "Gym", "location": {"lat": 42.36, "lng": -71.06}, "rating": 4.2}]
	}`, &input)
	require.NoError(t, err)
	require.Len(t, input.BaseResults, 1)
	assert.Equal(t, 4.2, *input.BaseResults[0].Rating)

	for _, raw := range []string{
		`{"location": "boston", "searchCenter": {"lat": 1, "lng": 2}}`,
		`{"businessType": ["gym"], "location": "boston", "searchCenter": {"lat": 91, "lng": 2}}`,
		`{"businessType": ["gym"], "location": "boston", "searchCenter": {"lat": 1, "lng": 2}, "baseResults": [{"name": "x"}]}`,
	} {
		err := decodeInput(raw, &Input{})
		require.Error(t, err, raw)
		stdErr, ok := commonerrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, commonerrors.ErrCodeInvalidInput, stdErr.Code)
	}
}
