package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

func TestCategoryExtractor_Extract(t *testing.T) {
	e := NewCategoryExtractor(vocabulary.Default())

	tests := []struct {
		name       string
		text       string
		contains   []string
		first      string
		confidence float64
	}{
		{
			name:       "synonym only",
			text:       "find sushi",
			contains:   []string{"restaurant"},
			first:      "restaurant",
			confidence: 0.9,
		},
		{
			name:       "canonical phrase wins over synonym confidence",
			text:       "Coffee Shops downtown",
			contains:   []string{"coffee_shop"},
			first:      "coffee_shop",
			confidence: 0.95,
		},
		{
			name:       "two categories joined by or",
			text:       "pubs or bakeries",
			contains:   []string{"bar", "bakery"},
			first:      "bar",
			confidence: 0.9,
		},
		{
			name:       "no vocabulary falls back",
			text:       "somewhere fun",
			contains:   []string{models.FallbackCategory},
			first:      models.FallbackCategory,
			confidence: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			for _, c := range tt.contains {
				assert.Contains(t, got.Categories, c)
			}
			assert.Equal(t, tt.first, got.Categories[0])
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestCategoryExtractor_NeverEmpty(t *testing.T) {
	e := NewCategoryExtractor(vocabulary.Default())

	for _, text := range []string{"", "   ", "xyz", "12345", "!!!", "coffee", "大学"} {
		got := e.Extract(text)
		assert.NotEmpty(t, got.Categories, "text %q", text)
		assert.GreaterOrEqual(t, got.Confidence, 0.0)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}

func TestCategoryExtractor_Deduplicates(t *testing.T) {
	e := NewCategoryExtractor(vocabulary.Default())

	got := e.Extract("restaurants restaurant eatery")

	count := 0
	for _, c := range got.Categories {
		if c == "restaurant" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCategoryExtractor_MultipleCategoriesFloor(t *testing.T) {
	e := NewCategoryExtractor(vocabulary.Default())

	got := e.Extract("gyms and bakeries")

	assert.GreaterOrEqual(t, len(got.Categories), 2)
	assert.GreaterOrEqual(t, got.Confidence, 0.85)
}
