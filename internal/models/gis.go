// internal/models/gis.go
package models

// GISFeatures holds proximity-derived features for one coordinate pair.
// Distances are miles to the nearest point of interest in each category.
type GISFeatures struct {
	DistanceToSchool         float64 `json:"distance_to_school"`
	DistanceToGrocery        float64 `json:"distance_to_grocery"`
	DistanceToTransit        float64 `json:"distance_to_transit"`
	DistanceToPark           float64 `json:"distance_to_park"`
	SchoolsWithin1Mi         int     `json:"schools_within_1mi"`
	TransitStopsWithinHalfMi int     `json:"transit_stops_within_half_mi"`
	RestaurantsWithinHalfMi  int     `json:"restaurants_within_half_mi"`
	WalkabilityScore         int     `json:"walkability_score"`
}
