// internal/models/refinement.go
package models

import "fmt"

type OperatorKind string

const (
	OperatorRating     OperatorKind = "rating"
	OperatorPrice      OperatorKind = "price"
	OperatorOpenNow    OperatorKind = "openNow"
	OperatorDistance   OperatorKind = "distance"
	OperatorAttributes OperatorKind = "attribute"
	OperatorLimit      OperatorKind = "limit"
)

// RefinementOperator is one typed narrowing instruction. The set of
// implementations is closed to this package.
type RefinementOperator interface {
	Kind() OperatorKind
	Confidence() float64
	sealed()
}

type RatingOperator struct {
	Threshold float64
	Score     float64
}

type PriceOperator struct {
	MaxLevel int
	Score    float64
}

type OpenNowOperator struct {
	Flag  bool
	Score float64
}

type DistanceOperator struct {
	MaxMeters float64
	Score     float64
}

type AttributesOperator struct {
	Attributes []string
	Score      float64
}

type LimitOperator struct {
	Count int
	Score float64
}

func (RatingOperator) Kind() OperatorKind     { return OperatorRating }
func (PriceOperator) Kind() OperatorKind      { return OperatorPrice }
func (OpenNowOperator) Kind() OperatorKind    { return OperatorOpenNow }
func (DistanceOperator) Kind() OperatorKind   { return OperatorDistance }
func (AttributesOperator) Kind() OperatorKind { return OperatorAttributes }
func (LimitOperator) Kind() OperatorKind      { return OperatorLimit }

func (o RatingOperator) Confidence() float64     { return o.Score }
func (o PriceOperator) Confidence() float64      { return o.Score }
func (o OpenNowOperator) Confidence() float64    { return o.Score }
func (o DistanceOperator) Confidence() float64   { return o.Score }
func (o AttributesOperator) Confidence() float64 { return o.Score }
func (o LimitOperator) Confidence() float64      { return o.Score }

func (RatingOperator) sealed()     {}
func (PriceOperator) sealed()      {}
func (OpenNowOperator) sealed()    {}
func (DistanceOperator) sealed()   {}
func (AttributesOperator) sealed() {}
func (LimitOperator) sealed()      {}

type RefinementParseResult struct {
	IsRefinement bool
	Operators    []RefinementOperator
	Confidence   float64
	OriginalText string
}

// OperatorRecord is the flat wire shape of an operator, used when results
// leave the process as job variables.
type OperatorRecord struct {
	FilterType OperatorKind `json:"filterType"`
	Threshold  *float64     `json:"threshold,omitempty"`
	MaxLevel   *int         `json:"maxLevel,omitempty"`
	OpenNow    *bool        `json:"openNow,omitempty"`
	MaxMeters  *float64     `json:"maxDistance,omitempty"`
	Attributes []string     `json:"attributes,omitempty"`
	Limit      *int         `json:"limit,omitempty"`
	Confidence float64      `json:"confidence"`
}

func ToRecord(op RefinementOperator) OperatorRecord {
	rec := OperatorRecord{FilterType: op.Kind(), Confidence: op.Confidence()}
	switch o := op.(type) {
	case RatingOperator:
		rec.Threshold = Float64(o.Threshold)
	case PriceOperator:
		rec.MaxLevel = Int(o.MaxLevel)
	case OpenNowOperator:
		rec.OpenNow = Bool(o.Flag)
	case DistanceOperator:
		rec.MaxMeters = Float64(o.MaxMeters)
	case AttributesOperator:
		rec.Attributes = append([]string{}, o.Attributes...)
	case LimitOperator:
		rec.Limit = Int(o.Count)
	default:
		panic(fmt.Sprintf("models: unknown refinement operator %T", op))
	}
	return rec
}

func ToRecords(ops []RefinementOperator) []OperatorRecord {
	out := make([]OperatorRecord, 0, len(ops))
	for _, op := range ops {
		out = append(out, ToRecord(op))
	}
	return out
}
