// internal/search/filter/apply.go
package filter

import (
	"math"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

const earthRadiusMeters = 6371000

// Apply returns the businesses that satisfy every active predicate in fs.
// Results with an unknown rating or price level are excluded by the
// matching predicate. OpenNow and Attributes are accepted but not applied:
// business records carry neither opening hours nor attribute tags.
// The input slice is never modified.
func Apply(results []models.Business, fs models.FilterState, center models.Coordinates) []models.Business {
	out := make([]models.Business, 0, len(results))
	for _, b := range results {
		if fs.MinRating != nil && (b.Rating == nil || *b.Rating < *fs.MinRating) {
			continue
		}
		if fs.MaxPriceLevel != nil && (b.PriceLevel == nil || *b.PriceLevel > *fs.MaxPriceLevel) {
			continue
		}
		if fs.MaxDistanceMeters != nil && distanceTo(b, center) > *fs.MaxDistanceMeters {
			continue
		}
		out = append(out, b)
	}
	return out
}

func distanceTo(b models.Business, center models.Coordinates) float64 {
	if b.Distance != nil {
		return *b.Distance
	}
	return Haversine(center, b.Location)
}

// Haversine returns the great-circle distance in meters, rounded to 0.1 m.
func Haversine(from, to models.Coordinates) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	dLat := toRadians(to.Lat - from.Lat)
	dLng := toRadians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusMeters*c*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
