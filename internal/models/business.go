// internal/models/business.go
package models

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Business is a normalized provider result. Rating, PriceLevel and Distance
// are nil when the provider did not report them.
type Business struct {
	PlaceID          string      `json:"placeId"`
	Name             string      `json:"name"`
	Location         Coordinates `json:"location"`
	Rating           *float64    `json:"rating,omitempty"`
	UserRatingsTotal int         `json:"userRatingsTotal,omitempty"`
	FormattedAddress string      `json:"formattedAddress,omitempty"`
	BusinessStatus   string      `json:"businessStatus,omitempty"`
	PriceLevel       *int        `json:"priceLevel,omitempty"`
	Distance         *float64    `json:"distance,omitempty"`
	Types            []string    `json:"types,omitempty"`
}
