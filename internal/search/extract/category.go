// internal/search/extract/category.go
package extract

import (
	"strings"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

const (
	synonymConfidence   = 0.9
	canonicalConfidence = 0.95
	multiCategoryFloor  = 0.85
	fallbackConfidence  = 0.3
)

type CategoryExtractor struct {
	rules []Rule[string]
}

func NewCategoryExtractor(vocab *vocabulary.Vocabulary) *CategoryExtractor {
	rules := make([]Rule[string], 0, len(vocab.Synonyms)+len(vocab.Categories))
	for _, s := range vocab.Synonyms {
		rules = append(rules, Rule[string]{
			Name:       "synonym:" + s.Phrase,
			Match:      Phrase(s.Phrase, s.Canonical),
			Confidence: synonymConfidence,
		})
	}
	for _, c := range vocab.Categories {
		rules = append(rules, Rule[string]{
			Name:       "canonical:" + c,
			Match:      Phrase(strings.ReplaceAll(c, "_", " "), c),
			Confidence: canonicalConfidence,
		})
	}
	return &CategoryExtractor{rules: rules}
}

// Extract collects every category the text mentions, in discovery order.
// The result is never empty.
func (e *CategoryExtractor) Extract(text string) models.CategoryResult {
	normalized := Normalize(text)

	var found []string
	seen := make(map[string]bool)
	confidence := 0.0

	for _, r := range e.rules {
		category, ok := r.Match(normalized)
		if !ok {
			continue
		}
		// A canonical hit raises confidence even for a category a synonym
		// already contributed.
		if r.Confidence > confidence {
			confidence = r.Confidence
		}
		if !seen[category] {
			seen[category] = true
			found = append(found, category)
		}
	}

	if len(found) == 0 {
		return models.CategoryResult{
			Categories: []string{models.FallbackCategory},
			Confidence: fallbackConfidence,
		}
	}
	if len(found) > 1 && confidence < multiCategoryFloor {
		confidence = multiCategoryFloor
	}
	return models.CategoryResult{Categories: found, Confidence: confidence}
}
