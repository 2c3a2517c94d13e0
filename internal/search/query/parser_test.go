package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/errors"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

// fakeContext is an in-memory LocationContext whose Recent can be told to
// fail a number of times.
type fakeContext struct {
	mu        sync.Mutex
	locations map[string][]string
	failures  int
	failWith  error
	calls     int
}

func newFakeContext() *fakeContext {
	return &fakeContext{locations: make(map[string][]string)}
}

func (f *fakeContext) Recent(_ context.Context, sessionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, f.failWith
	}
	return append([]string(nil), f.locations[sessionID]...), nil
}

func (f *fakeContext) Record(_ context.Context, sessionID, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations[sessionID] = append([]string{location}, f.locations[sessionID]...)
	return nil
}

func newTestParser(t *testing.T, contexts LocationContext) *Parser {
	t.Helper()
	p := NewParser(vocabulary.Default(), contexts, Config{}, logger.NewTestLogger(t))
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestParser_Parse_FullQuery(t *testing.T) {
	p := newTestParser(t, nil)

	result, err := p.Parse(context.Background(), "find 4-star coffee shops near downtown Seattle", "")
	require.NoError(t, err)

	assert.Contains(t, result.Category.Categories, "coffee_shop")
	require.NotNil(t, result.Filters.MinRating)
	assert.Equal(t, 4.0, *result.Filters.MinRating)
	assert.Equal(t, models.LocationLandmark, result.Location.Kind)
	assert.Equal(t, "downtown seattle", result.Location.Value)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Equal(t, "find 4-star coffee shops near downtown Seattle", result.Metadata.OriginalQuery)
	assert.Equal(t, 2024, result.Metadata.Timestamp.Year())
}

func TestParser_Parse_AggregateConfidence(t *testing.T) {
	p := newTestParser(t, nil)

	// No filters: mean of category and location only.
	result, err := p.Parse(context.Background(), "gyms in Boston", "")
	require.NoError(t, err)
	assert.InDelta(t, (0.95+0.75)/2, result.Confidence, 1e-9)

	// Filter confidence joins the mean once it is non-zero.
	result, err = p.Parse(context.Background(), "cheap gyms in Boston", "")
	require.NoError(t, err)
	assert.InDelta(t, (0.95+0.75+0.85)/3, result.Confidence, 1e-9)
}

func TestParser_Parse_ValidationErrors(t *testing.T) {
	p := newTestParser(t, nil)

	tests := []struct {
		text string
		want error
		code commonerrors.ErrorCode
	}{
		{"", ErrEmptyQuery, commonerrors.ErrCodeEmptyQuery},
		{strings.Repeat("a", 501), ErrQueryTooLong, commonerrors.ErrCodeQueryTooLong},
		{"12345", ErrMalformedQuery, commonerrors.ErrCodeMalformedQuery},
		{"!!!!!!", ErrMalformedQuery, commonerrors.ErrCodeMalformedQuery},
	}

	for _, tt := range tests {
		result, err := p.Parse(context.Background(), tt.text, "")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, tt.want)
		assert.Equal(t, tt.code, ToStandardError(err, p.MaxQueryLength()).Code)
	}
}

func TestParser_Parse_SanitizesMarkup(t *testing.T) {
	p := newTestParser(t, nil)

	result, err := p.Parse(context.Background(), "<b>bakeries</b> in <i>Denver</i>", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"bakery"}, result.Category.Categories)
	assert.Equal(t, "denver", result.Location.Value)
	assert.Equal(t, "<b>bakeries</b> in <i>Denver</i>", result.Metadata.OriginalQuery)
}

func TestParser_Parse_PronounResolution(t *testing.T) {
	ctxStore := newFakeContext()
	p := newTestParser(t, ctxStore)
	ctx := context.Background()

	first, err := p.Parse(ctx, "pizza in Portland", "s1")
	require.NoError(t, err)
	assert.Equal(t, "portland", first.Location.Value)
	assert.Equal(t, []string{"portland"}, ctxStore.locations["s1"])

	second, err := p.Parse(ctx, "coffee near there", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.LocationLandmark, second.Location.Kind)
	assert.Equal(t, "portland", second.Location.Value)
	assert.Equal(t, "coffee near there", second.Metadata.OriginalQuery)

	// A different session has no history; the pronoun is left alone.
	other, err := p.Parse(ctx, "coffee near there", "s2")
	require.NoError(t, err)
	assert.Equal(t, "there", other.Location.Value)
}

func TestParser_Parse_LowConfidenceLocationNotRecorded(t *testing.T) {
	ctxStore := newFakeContext()
	p := newTestParser(t, ctxStore)

	_, err := p.Parse(context.Background(), "sushi", "s1")
	require.NoError(t, err)

	assert.Empty(t, ctxStore.locations["s1"])
}

func TestParser_Parse_ContextFailureIsStandardError(t *testing.T) {
	ctxStore := newFakeContext()
	ctxStore.failures = 1
	ctxStore.failWith = errors.New("context store timeout")
	p := newTestParser(t, ctxStore)

	_, err := p.Parse(context.Background(), "tacos over there", "s1")
	require.Error(t, err)

	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeContextUnavailable, stdErr.Code)
	assert.True(t, commonerrors.IsTransient(err))
}
