// internal/workers/estimation/estimate-rent/models.go
package estimaterent

import "rent-estimator/internal/models"

type Input struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	Sqft         *int     `json:"sqft,omitempty"`
	YearBuilt    *int     `json:"yearBuilt,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`

	HasGarage   bool `json:"hasGarage,omitempty"`
	HasAC       bool `json:"hasAc,omitempty"`
	HasPool     bool `json:"hasPool,omitempty"`
	PetFriendly bool `json:"petFriendly,omitempty"`
	LotSqft     *int `json:"lotSqft,omitempty"`
}

// toQuery maps the job variables onto the estimator's input contract.
func (in *Input) toQuery() models.PropertyQuery {
	return models.PropertyQuery{
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Sqft:         in.Sqft,
		YearBuilt:    in.YearBuilt,
		ZipCode:      in.ZipCode,
		PropertyType: in.PropertyType,
		HasGarage:    in.HasGarage,
		HasAC:        in.HasAC,
		HasPool:      in.HasPool,
		PetFriendly:  in.PetFriendly,
		LotSqft:      in.LotSqft,
	}
}

type Output struct {
	RentEstimate *models.RentEstimate `json:"rentEstimate"`
}
