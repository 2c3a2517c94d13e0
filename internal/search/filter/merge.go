// internal/search/filter/merge.go
package filter

import (
	"fmt"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/models"
)

// OperatorsToFilterState folds operators into a filter state. Each operator
// kind owns one field; when a kind repeats, the later operator wins. Limit
// operators do not touch the filter state, see ResultLimit.
func OperatorsToFilterState(ops []models.RefinementOperator) models.FilterState {
	var fs models.FilterState
	for _, op := range ops {
		switch o := op.(type) {
		case models.RatingOperator:
			fs.MinRating = models.Float64(o.Threshold)
		case models.PriceOperator:
			fs.MaxPriceLevel = models.Int(o.MaxLevel)
		case models.OpenNowOperator:
			fs.OpenNow = models.Bool(o.Flag)
		case models.DistanceOperator:
			fs.MaxDistanceMeters = models.Float64(o.MaxMeters)
		case models.AttributesOperator:
			fs.Attributes = append([]string(nil), o.Attributes...)
		case models.LimitOperator:
		default:
			panic(fmt.Sprintf("filter: unknown refinement operator %T", op))
		}
	}
	return fs
}

// ResultLimit returns the count of the last Limit operator, if any.
func ResultLimit(ops []models.RefinementOperator) (int, bool) {
	count, found := 0, false
	for _, op := range ops {
		if l, ok := op.(models.LimitOperator); ok {
			count, found = l.Count, true
		}
	}
	return count, found
}

// Merge overlays incoming on existing field by field. Fields present in
// incoming replace the existing value even when that widens the filter.
func Merge(existing, incoming models.FilterState) models.FilterState {
	out := existing.Clone()
	if incoming.MinRating != nil {
		out.MinRating = models.Float64(*incoming.MinRating)
	}
	if incoming.MaxPriceLevel != nil {
		out.MaxPriceLevel = models.Int(*incoming.MaxPriceLevel)
	}
	if incoming.OpenNow != nil {
		out.OpenNow = models.Bool(*incoming.OpenNow)
	}
	if incoming.MaxDistanceMeters != nil {
		out.MaxDistanceMeters = models.Float64(*incoming.MaxDistanceMeters)
	}
	if incoming.Attributes != nil {
		out.Attributes = append([]string(nil), incoming.Attributes...)
	}
	return out
}
