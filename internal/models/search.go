// internal/models/search.go
package models

import "time"

// FallbackCategory is reported when no category vocabulary matched.
const FallbackCategory = "business"

type LocationKind string

const (
	LocationExplicit LocationKind = "explicit"
	LocationRelative LocationKind = "relative"
	LocationLandmark LocationKind = "landmark"
)

type DistanceUnit string

const (
	UnitMiles  DistanceUnit = "miles"
	UnitKm     DistanceUnit = "km"
	UnitMeters DistanceUnit = "meters"
)

// DistanceQualifier is a "within N units" constraint attached to a location.
type DistanceQualifier struct {
	Value float64      `json:"value"`
	Unit  DistanceUnit `json:"unit"`
}

// Meters converts the qualifier into meters.
func (d DistanceQualifier) Meters() float64 {
	switch d.Unit {
	case UnitMiles:
		return d.Value * MetersPerMile
	case UnitKm:
		return d.Value * 1000
	default:
		return d.Value
	}
}

const MetersPerMile = 1609.34

type CategoryResult struct {
	Categories []string `json:"categories"`
	Confidence float64  `json:"confidence"`
}

// IsFallback reports whether the result only holds the generic category.
func (c CategoryResult) IsFallback() bool {
	return len(c.Categories) == 0 || c.Categories[0] == FallbackCategory
}

// LocationResult with an empty Value and zero confidence means no location was found.
type LocationResult struct {
	Kind       LocationKind       `json:"type"`
	Value      string             `json:"value"`
	Distance   *DistanceQualifier `json:"distance,omitempty"`
	Confidence float64            `json:"confidence"`
}

// Found reports whether a location was extracted.
func (l LocationResult) Found() bool {
	return l.Value != ""
}

// FilterState holds the narrowing constraints of a search. A nil field is
// unconstrained, never false or zero.
type FilterState struct {
	MinRating         *float64 `json:"minRating,omitempty"`
	MaxPriceLevel     *int     `json:"maxPriceLevel,omitempty"`
	OpenNow           *bool    `json:"openNow,omitempty"`
	MaxDistanceMeters *float64 `json:"maxDistanceMeters,omitempty"`
	Attributes        []string `json:"attributes,omitempty"`
}

// IsEmpty reports whether no dimension is constrained.
func (f FilterState) IsEmpty() bool {
	return f.MinRating == nil && f.MaxPriceLevel == nil && f.OpenNow == nil &&
		f.MaxDistanceMeters == nil && f.Attributes == nil
}

// Clone returns a deep copy so snapshots never alias live session state.
func (f FilterState) Clone() FilterState {
	out := FilterState{}
	if f.MinRating != nil {
		v := *f.MinRating
		out.MinRating = &v
	}
	if f.MaxPriceLevel != nil {
		v := *f.MaxPriceLevel
		out.MaxPriceLevel = &v
	}
	if f.OpenNow != nil {
		v := *f.OpenNow
		out.OpenNow = &v
	}
	if f.MaxDistanceMeters != nil {
		v := *f.MaxDistanceMeters
		out.MaxDistanceMeters = &v
	}
	if f.Attributes != nil {
		out.Attributes = append([]string{}, f.Attributes...)
	}
	return out
}

// Float64 and friends build optional filter values.
func Float64(v float64) *float64 { return &v }
func Int(v int) *int             { return &v }
func Bool(v bool) *bool          { return &v }

type ParseMetadata struct {
	OriginalQuery string    `json:"originalQuery"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"sessionId,omitempty"`
}

type QueryParseResult struct {
	Category   CategoryResult `json:"businessType"`
	Location   LocationResult `json:"location"`
	Filters    FilterState    `json:"filters"`
	Metadata   ParseMetadata  `json:"metadata"`
	Confidence float64        `json:"confidence"`
}

type AmbiguousField string

const (
	AmbiguousBusinessType AmbiguousField = "businessType"
	AmbiguousLocation     AmbiguousField = "location"
)

type AmbiguityDetection struct {
	Field              AmbiguousField `json:"field"`
	Candidates         []string       `json:"detectedValues"`
	ClarifyingQuestion string         `json:"question"`
	Confidence         float64        `json:"confidence"`
}
