package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

var seattle = models.Coordinates{Lat: 47.6062, Lng: -122.3321}

func business(id string, rating *float64, price *int, loc models.Coordinates) models.Business {
	return models.Business{PlaceID: id, Name: id, Rating: rating, PriceLevel: price, Location: loc}
}

func sampleResults() []models.Business {
	return []models.Business{
		business("a", models.Float64(4.6), models.Int(2), seattle),
		business("b", models.Float64(3.9), models.Int(1), seattle),
		business("c", nil, models.Int(1), seattle),
		business("d", models.Float64(4.8), nil, seattle),
		business("e", models.Float64(4.2), models.Int(4), models.Coordinates{Lat: 47.6205, Lng: -122.3493}),
		business("f", models.Float64(4.9), models.Int(2), models.Coordinates{Lat: 45.5152, Lng: -122.6784}),
	}
}

func ids(results []models.Business) []string {
	out := make([]string, len(results))
	for i, b := range results {
		out[i] = b.PlaceID
	}
	return out
}

func TestOperatorsToFilterState(t *testing.T) {
	fs := OperatorsToFilterState([]models.RefinementOperator{
		models.RatingOperator{Threshold: 4, Score: 0.9},
		models.PriceOperator{MaxLevel: 2, Score: 0.95},
		models.OpenNowOperator{Flag: true, Score: 0.95},
		models.DistanceOperator{MaxMeters: 1609.34, Score: 0.9},
		models.AttributesOperator{Attributes: []string{"patio"}, Score: 0.85},
		models.LimitOperator{Count: 5, Score: 0.85},
		models.RatingOperator{Threshold: 4.5, Score: 0.9},
	})

	require.NotNil(t, fs.MinRating)
	assert.Equal(t, 4.5, *fs.MinRating)
	assert.Equal(t, 2, *fs.MaxPriceLevel)
	assert.True(t, *fs.OpenNow)
	assert.Equal(t, 1609.34, *fs.MaxDistanceMeters)
	assert.Equal(t, []string{"patio"}, fs.Attributes)

	assert.True(t, OperatorsToFilterState(nil).IsEmpty())
	assert.True(t, OperatorsToFilterState([]models.RefinementOperator{models.LimitOperator{Count: 3}}).IsEmpty())
}

func TestResultLimit(t *testing.T) {
	_, ok := ResultLimit([]models.RefinementOperator{models.RatingOperator{Threshold: 4}})
	assert.False(t, ok)

	n, ok := ResultLimit([]models.RefinementOperator{
		models.LimitOperator{Count: 10},
		models.RatingOperator{Threshold: 4},
		models.LimitOperator{Count: 3},
	})
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestMerge(t *testing.T) {
	existing := models.FilterState{
		MinRating:     models.Float64(4),
		MaxPriceLevel: models.Int(1),
		Attributes:    []string{"wifi"},
	}

	merged := Merge(existing, models.FilterState{
		MaxPriceLevel: models.Int(3),
		OpenNow:       models.Bool(true),
	})

	assert.Equal(t, 4.0, *merged.MinRating)
	// Later refinements may widen an earlier constraint.
	assert.Equal(t, 3, *merged.MaxPriceLevel)
	assert.True(t, *merged.OpenNow)
	assert.Nil(t, merged.MaxDistanceMeters)
	assert.Equal(t, []string{"wifi"}, merged.Attributes)

	// Inputs are untouched.
	assert.Equal(t, 1, *existing.MaxPriceLevel)
	assert.Nil(t, existing.OpenNow)

	assert.Equal(t, existing, Merge(existing, models.FilterState{}))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		fs   models.FilterState
		want []string
	}{
		{"empty filter keeps everything", models.FilterState{}, []string{"a", "b", "c", "d", "e", "f"}},
		{"rating excludes unknown", models.FilterState{MinRating: models.Float64(4)}, []string{"a", "d", "e", "f"}},
		{"price excludes unknown", models.FilterState{MaxPriceLevel: models.Int(2)}, []string{"a", "b", "c", "f"}},
		{"distance", models.FilterState{MaxDistanceMeters: models.Float64(5000)}, []string{"a", "b", "c", "d", "e"}},
		{
			"combined",
			models.FilterState{MinRating: models.Float64(4), MaxPriceLevel: models.Int(2), MaxDistanceMeters: models.Float64(5000)},
			[]string{"a"},
		},
		{
			"open now and attributes pass through",
			models.FilterState{OpenNow: models.Bool(true), Attributes: []string{"valet parking"}},
			[]string{"a", "b", "c", "d", "e", "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sampleResults(), tt.fs, seattle)))
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	filters := []models.FilterState{
		{},
		{MinRating: models.Float64(4.5)},
		{MaxPriceLevel: models.Int(1), MaxDistanceMeters: models.Float64(100)},
		{MinRating: models.Float64(4), MaxPriceLevel: models.Int(4), MaxDistanceMeters: models.Float64(1e6)},
	}

	for _, fs := range filters {
		once := Apply(sampleResults(), fs, seattle)
		twice := Apply(once, fs, seattle)
		assert.Equal(t, once, twice)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	results := sampleResults()
	before := ids(results)

	Apply(results, models.FilterState{MinRating: models.Float64(4.7)}, seattle)

	assert.Equal(t, before, ids(results))
}

func TestApply_UsesCachedDistance(t *testing.T) {
	far := business("far", models.Float64(5), models.Int(1), models.Coordinates{Lat: 0, Lng: 0})
	far.Distance = models.Float64(50)

	got := Apply([]models.Business{far}, models.FilterState{MaxDistanceMeters: models.Float64(100)}, seattle)
	assert.Len(t, got, 1)
}

func TestHaversine(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(seattle, seattle))

	// Seattle to Portland is roughly 233 km.
	d := Haversine(seattle, models.Coordinates{Lat: 45.5152, Lng: -122.6784})
	assert.InDelta(t, 233000, d, 2000)

	// One degree of latitude along a meridian.
	d = Haversine(models.Coordinates{Lat: 0, Lng: 0}, models.Coordinates{Lat: 1, Lng: 0})
	assert.InDelta(t, 111194.9, d, 0.1)
}
