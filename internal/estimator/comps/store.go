// internal/estimator/comps/store.go
package comps

import (
	"context"

	"rent-estimator/internal/models"
)

// QueryParams bound the candidate fetch. Latitude/Longitude/RadiusMiles are
// a hint for stores that can pre-filter geographically; the matcher always
// re-checks the great-circle distance itself.
type QueryParams struct {
	BedroomsMin  int
	BedroomsMax  int
	PriceMin     float64
	PriceMax     float64
	LookbackDays int

	Latitude    float64
	Longitude   float64
	RadiusMiles float64
}

// Store fetches candidate rental records. Implementations guarantee
// non-null coordinates on every returned record.
type Store interface {
	Query(ctx context.Context, params QueryParams) ([]models.ComparableRecord, error)
}
