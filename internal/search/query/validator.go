// internal/search/query/validator.go
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxQueryLength = 500
	// maxRepeatRun is the longest run of one character a query may hold.
	maxRepeatRun = 10
)

var (
	ErrEmptyQuery     = errors.New("EMPTY_QUERY")
	ErrQueryTooLong   = errors.New("QUERY_TOO_LONG")
	ErrMalformedQuery = errors.New("MALFORMED_QUERY")
)

var (
	onlyDigits  = regexp.MustCompile(`^\d+$`)
	onlySymbols = regexp.MustCompile(`^[^a-zA-Z0-9\s]+$`)
	markupTag   = regexp.MustCompile(`<[^>]*>`)
	angleMarks  = regexp.MustCompile(`[<>]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

type Validator struct {
	maxLength int
}

func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxQueryLength
	}
	return &Validator{maxLength: maxLength}
}

func (v *Validator) MaxLength() int {
	return v.maxLength
}

// Validate rejects empty, oversized and nonsensical input. Length is counted
// in characters, not bytes.
func (v *Validator) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyQuery
	}
	if n := utf8.RuneCountInString(text); n > v.maxLength {
		return fmt.Errorf("%w: %d characters exceeds %d", ErrQueryTooLong, n, v.maxLength)
	}
	if onlyDigits.MatchString(trimmed) {
		return fmt.Errorf("%w: digits only", ErrMalformedQuery)
	}
	if onlySymbols.MatchString(trimmed) {
		return fmt.Errorf("%w: symbols only", ErrMalformedQuery)
	}
	if hasRepeatRun(text, maxRepeatRun+1) {
		return fmt.Errorf("%w: repeated characters", ErrMalformedQuery)
	}
	return nil
}

// Sanitize strips markup and collapses whitespace.
func Sanitize(text string) string {
	out := markupTag.ReplaceAllString(text, "")
	out = angleMarks.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// hasRepeatRun reports whether text holds n or more consecutive copies of
// one character. RE2 has no backreferences, so this is a scan.
func hasRepeatRun(text string, n int) bool {
	var prev rune
	run := 0
	for i, r := range text {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}
