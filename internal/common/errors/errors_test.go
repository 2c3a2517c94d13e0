package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout message", stderrors.New("context store timeout"), true},
		{"network message", stderrors.New("Network unreachable"), true},
		{"connection message", fmt.Errorf("redis: %w", stderrors.New("connection refused")), true},
		{"retryable standard error", NewCacheUnavailableError(stderrors.New("boom")), true},
		{"context error with transient cause", NewContextUnavailableError(stderrors.New("i/o timeout")), true},
		{"context error with permanent cause", NewContextUnavailableError(stderrors.New("permission denied")), false},
		{"validation error", NewEmptyQueryError(), false},
		{"plain error", stderrors.New("bad input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewCacheUnavailableError(stderrors.New("dial tcp: i/o timeout")))

	assert.Equal(t, "CACHE_UNAVAILABLE", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "CACHE_UNAVAILABLE", vars["errorCode"])
	assert.NotContains(t, vars, "errorDetails")

	bpmn = ConvertToBPMNError(NewMalformedQueryError())
	assert.Equal(t, 0, bpmn.Retries)
	assert.False(t, bpmn.Retryable)
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("refine: %w", NewSessionNotFoundError("abc"))

	stdErr := Normalize(wrapped)
	assert.Equal(t, ErrCodeSessionNotFound, stdErr.Code)

	cause := stderrors.New("unexpected")
	stdErr = Normalize(cause)
	require.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.True(t, stderrors.Is(stdErr, cause))
	assert.Equal(t, "Unexpected error", stdErr.Message)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeQueryTooLong))
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
	assert.True(t, IsRetryableErrorCode(ErrCodeContextUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeEmptyQuery))
}
