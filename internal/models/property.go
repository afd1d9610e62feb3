// internal/models/property.go
package models

import "time"

// PropertyQuery is the immutable input of one estimation request.
// Optional attributes are pointers so "absent" is distinguishable from zero.
type PropertyQuery struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	Sqft         *int     `json:"sqft,omitempty"`
	YearBuilt    *int     `json:"yearBuilt,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`

	// Amenity flags feed the model's feature vector when known.
	HasGarage   bool `json:"hasGarage,omitempty"`
	HasAC       bool `json:"hasAc,omitempty"`
	HasPool     bool `json:"hasPool,omitempty"`
	PetFriendly bool `json:"petFriendly,omitempty"`
	LotSqft     *int `json:"lotSqft,omitempty"`
}

// ComparableRecord is a rental listing row as the comparables store returns it.
// Read-only to the estimator; coordinates are guaranteed non-null by the store.
type ComparableRecord struct {
	Address   string    `json:"address"`
	Price     float64   `json:"price"`
	Bedrooms  int       `json:"bedrooms"`
	Bathrooms *float64  `json:"bathrooms,omitempty"`
	Sqft      *int      `json:"sqft,omitempty"`
	YearBuilt *int      `json:"yearBuilt,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	ListedAt  time.Time `json:"listedAt"`
}

// CompSummary is the ranked, user-facing view of a kept comparable.
type CompSummary struct {
	Address  string   `json:"address"`
	Price    float64  `json:"price"`
	Beds     int      `json:"beds"`
	Baths    *float64 `json:"baths,omitempty"`
	Sqft     *int     `json:"sqft,omitempty"`
	Distance float64  `json:"distance"`
	Score    float64  `json:"score"`
}
