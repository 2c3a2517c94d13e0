package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
)

func TestLocationExtractor_Extract(t *testing.T) {
	e := NewLocationExtractor(vocabulary.Default())

	tests := []struct {
		name       string
		text       string
		kind       models.LocationKind
		value      string
		confidence float64
	}{
		{"relative keyword", "pizza near me", models.LocationRelative, "near me", 0.9},
		{"relative before landmark", "bars nearby the stadium", models.LocationRelative, "nearby", 0.9},
		{"landmark with indicator", "coffee near Pike Place Market, please", models.LocationLandmark, "pike place market", 0.8},
		{"downtown landmark", "tacos downtown Austin", models.LocationLandmark, "austin", 0.8},
		{"explicit in", "gyms in Seattle", models.LocationExplicit, "seattle", 0.75},
		{"zip code", "dentist 98101", models.LocationExplicit, "98101", 0.95},
		{"zip plus four", "bank 98101-1234", models.LocationExplicit, "98101-1234", 0.95},
		{"nothing found", "sushi", models.LocationRelative, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.value, got.Value)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestLocationExtractor_DistanceQualifier(t *testing.T) {
	e := NewLocationExtractor(vocabulary.Default())

	tests := []struct {
		text  string
		value float64
		unit  models.DistanceUnit
	}{
		{"cafes within 2 miles", 2, models.UnitMiles},
		{"cafes within 1.5 km", 1.5, models.UnitKm},
		{"cafes within 500 meters", 500, models.UnitMeters},
		{"gas less than 3 miles", 3, models.UnitMiles},
		{"gas under 4 miles", 4, models.UnitMiles},
		{"pharmacy 5 miles", 5, models.UnitMiles},
		{"pharmacy 10km", 10, models.UnitKm},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text)
			require.NotNil(t, got.Distance)
			assert.Equal(t, models.LocationRelative, got.Kind)
			assert.Equal(t, "near me", got.Value)
			assert.InDelta(t, tt.value, got.Distance.Value, 1e-9)
			assert.Equal(t, tt.unit, got.Distance.Unit)
			assert.InDelta(t, 0.85, got.Confidence, 1e-9)
		})
	}
}

func TestLocationExtractor_DurationIsNotDistance(t *testing.T) {
	e := NewLocationExtractor(vocabulary.Default())

	for _, text := range []string{"cafes within 5 minutes", "gyms within 10 mins"} {
		t.Run(text, func(t *testing.T) {
			assert.Nil(t, e.Extract(text).Distance)
		})
	}
}

func TestLocationExtractor_InStopWords(t *testing.T) {
	e := NewLocationExtractor(vocabulary.Default())

	got := e.Extract("food in the")
	assert.False(t, got.Found())

	got = e.Extract("food in ny")
	assert.False(t, got.Found(), "two-letter places are rejected")
}

func TestLocationExtractor_ZipWithoutOtherLocation(t *testing.T) {
	e := NewLocationExtractor(vocabulary.Default())

	for _, text := range []string{"12345", "show me 90210", "dentists 10001 please", "pharmacy, 60614"} {
		got := e.Extract(text)
		assert.Equal(t, models.LocationExplicit, got.Kind, text)
		assert.GreaterOrEqual(t, got.Confidence, 0.9, text)
	}
}
