// internal/search/extract/rules.go
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule is one entry of an ordered extraction table. Match inspects
// normalized text and reports the value it produced.
type Rule[T any] struct {
	Name       string
	Match      func(text string) (T, bool)
	Confidence float64
}

// FirstMatch walks rules in order and returns the value of the first rule
// that matches, with that rule's confidence.
func FirstMatch[T any](rules []Rule[T], text string) (T, float64, bool) {
	for _, r := range rules {
		if v, ok := r.Match(text); ok {
			return v, r.Confidence, true
		}
	}
	var zero T
	return zero, 0, false
}

// Phrase matches when text contains phrase as a substring.
func Phrase[T any](phrase string, value T) func(string) (T, bool) {
	return func(text string) (T, bool) {
		if strings.Contains(text, phrase) {
			return value, true
		}
		var zero T
		return zero, false
	}
}

// Pattern matches re and hands the submatches to convert.
func Pattern[T any](re *regexp.Regexp, convert func(m []string) (T, bool)) func(string) (T, bool) {
	return func(text string) (T, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			var zero T
			return zero, false
		}
		return convert(m)
	}
}

// Fixed matches re and yields a constant value.
func Fixed[T any](re *regexp.Regexp, value T) func(string) (T, bool) {
	return Pattern(re, func([]string) (T, bool) { return value, true })
}

// ParseNumber reads the first capture group as a float.
func ParseNumber(m []string) (float64, bool) {
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Normalize lowercases and trims text before matching.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// MeanConfidence averages the given scores; an empty set scores zero.
func MeanConfidence(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
