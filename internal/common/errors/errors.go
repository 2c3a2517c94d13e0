// Package errors provides the search error taxonomy and its BPMN mapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Input validation
const (
	ErrCodeEmptyQuery     ErrorCode = "EMPTY_QUERY"
	ErrCodeQueryTooLong   ErrorCode = "QUERY_TOO_LONG"
	ErrCodeMalformedQuery ErrorCode = "MALFORMED_QUERY"
	ErrCodeInvalidFilter  ErrorCode = "INVALID_FILTER_VALUE"
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
)

// Session and refinement
const (
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeContextUnavailable ErrorCode = "CONTEXT_UNAVAILABLE"
	ErrCodeRefinementFailed   ErrorCode = "REFINEMENT_FAILED"
)

// Infrastructure
const (
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message is fixed
// per code and safe to show; Details carries the internal cause.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is the shape thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the process variables set alongside a failed job.
// Details stay in the logs.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, retryable bool, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewEmptyQueryError() *StandardError {
	return newError(ErrCodeEmptyQuery, "Query cannot be empty", false, nil)
}

func NewQueryTooLongError(limit int) *StandardError {
	err := newError(ErrCodeQueryTooLong, fmt.Sprintf("Query exceeds maximum length of %d characters", limit), false, nil)
	err.Metadata = map[string]interface{}{"maxLength": limit}
	return err
}

func NewMalformedQueryError() *StandardError {
	return newError(ErrCodeMalformedQuery, "Query appears to be malformed or nonsensical", false, nil)
}

// NewInvalidFilterError reports a filter value outside its documented range.
func NewInvalidFilterError(cause error) *StandardError {
	return newError(ErrCodeInvalidFilter, "Filter value is out of range", false, cause)
}

func NewInvalidInputError(cause error) *StandardError {
	return newError(ErrCodeInvalidInput, "Job input could not be read", false, cause)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	err := newError(ErrCodeSessionNotFound, "Conversation session not found or expired", false, nil)
	err.Metadata = map[string]interface{}{"sessionId": sessionID}
	return err
}

// NewContextUnavailableError wraps a conversation context failure. It is
// retryable only when the cause itself is transient.
func NewContextUnavailableError(cause error) *StandardError {
	return newError(ErrCodeContextUnavailable, "Conversation context unavailable", IsTransient(cause), cause)
}

func NewRefinementFailedError(cause error) *StandardError {
	return newError(ErrCodeRefinementFailed, "Refinement could not be applied", false, cause)
}

func NewCacheUnavailableError(cause error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Result cache unavailable", true, cause)
}

func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", false, cause)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the BPMN error codes modeled in
// the search process. They are identical today.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeEmptyQuery:         "EMPTY_QUERY",
	ErrCodeQueryTooLong:       "QUERY_TOO_LONG",
	ErrCodeMalformedQuery:     "MALFORMED_QUERY",
	ErrCodeInvalidFilter:      "INVALID_FILTER_VALUE",
	ErrCodeInvalidInput:       "INVALID_INPUT",
	ErrCodeSessionNotFound:    "SESSION_NOT_FOUND",
	ErrCodeContextUnavailable: "CONTEXT_UNAVAILABLE",
	ErrCodeRefinementFailed:   "REFINEMENT_FAILED",
	ErrCodeCacheUnavailable:   "CACHE_UNAVAILABLE",
	ErrCodeInternal:           "INTERNAL_ERROR",
}

// GetRetryCount returns how many job retries a code is worth.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContextUnavailable, ErrCodeCacheUnavailable:
		return 3
	case ErrCodeInternal:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeEmptyQuery, ErrCodeQueryTooLong, ErrCodeMalformedQuery, ErrCodeInvalidFilter, ErrCodeInvalidInput:
		return "VALIDATION"
	case ErrCodeSessionNotFound, ErrCodeContextUnavailable:
		return "SESSION"
	case ErrCodeRefinementFailed:
		return "REFINEMENT"
	case ErrCodeCacheUnavailable:
		return "CACHE"
	default:
		return "OTHER"
	}
}

// AsStandardError extracts a StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

var transientMarkers = []string{"timeout", "network", "connection"}

// IsTransient reports whether err is a retryable StandardError or its
// message contains one of transientMarkers.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if stdErr, ok := AsStandardError(err); ok && stdErr.Retryable {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
