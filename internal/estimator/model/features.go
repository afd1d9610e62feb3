// internal/estimator/model/features.go
package model

import (
	"strings"

	"rent-estimator/internal/models"
)

// Training snapshot year; age is measured against it, not the wall clock,
// so a frozen artifact keeps seeing the feature distribution it trained on.
const referenceYear = 2025

// Imputation defaults for missing property attributes. These match the
// values the training pipeline fills with, so inference stays consistent.
const (
	defaultBedrooms     = 3.0
	defaultBathrooms    = 2.0
	defaultSqft         = 1500.0
	defaultYearBuilt    = 1990.0
	defaultMedianIncome = 50000.0
	defaultRentToIncome = 0.3
)

// FeatureVector maps feature name to value. Order is imposed later by the
// artifact's feature_names list, never by map iteration.
type FeatureVector map[string]float64

// ExtractFeatures derives the core property features, imputing defaults
// for anything the query leaves unset.
func ExtractFeatures(query models.PropertyQuery) FeatureVector {
	features := FeatureVector{}

	bedrooms := float64(query.Bedrooms)
	if bedrooms <= 0 {
		bedrooms = defaultBedrooms
	}
	bathrooms := defaultBathrooms
	if query.Bathrooms != nil {
		bathrooms = *query.Bathrooms
	}
	sqft := defaultSqft
	if query.Sqft != nil {
		sqft = float64(*query.Sqft)
	}
	yearBuilt := defaultYearBuilt
	if query.YearBuilt != nil {
		yearBuilt = float64(*query.YearBuilt)
	}

	features["bedrooms"] = bedrooms
	features["bathrooms"] = bathrooms
	features["sqft"] = sqft
	features["year_built"] = yearBuilt

	features["age"] = referenceYear - yearBuilt
	features["sqft_per_bed"] = sqft / maxFloat(bedrooms, 1)
	features["bath_bed_ratio"] = bathrooms / maxFloat(bedrooms, 1)

	features["latitude"] = query.Latitude
	features["longitude"] = query.Longitude

	lotSqft := sqft * 3
	if query.LotSqft != nil && *query.LotSqft > 0 {
		lotSqft = float64(*query.LotSqft)
	}
	features["lot_sqft"] = lotSqft
	features["lot_to_sqft_ratio"] = lotSqft / maxFloat(sqft, 1)

	features["has_garage"] = boolFeature(query.HasGarage)
	features["has_ac"] = boolFeature(query.HasAC)
	features["has_pool"] = boolFeature(query.HasPool)
	features["pet_friendly"] = boolFeature(query.PetFriendly)

	propType := strings.ToLower(query.PropertyType)
	if propType == "" {
		propType = "single_family"
	}
	features["is_single_family"] = boolFeature(
		strings.Contains(propType, "single") || strings.Contains(propType, "house"))
	features["is_townhouse"] = boolFeature(strings.Contains(propType, "town"))
	features["is_condo"] = boolFeature(
		strings.Contains(propType, "condo") || strings.Contains(propType, "apartment"))
	features["is_multi_family"] = boolFeature(
		strings.Contains(propType, "multi") || strings.Contains(propType, "duplex"))

	return features
}

// AddMarketFeatures folds market-level and proximity features into the
// vector. Pass nil for anything unavailable; the documented defaults
// fill the gaps.
func AddMarketFeatures(features FeatureVector, hudRent, medianIncome *float64, gis *models.GISFeatures) FeatureVector {
	out := make(FeatureVector, len(features)+12)
	for k, v := range features {
		out[k] = v
	}

	if hudRent != nil && *hudRent > 0 {
		out["hud_fmr"] = *hudRent
		out["has_hud_data"] = 1
	} else {
		out["hud_fmr"] = 0
		out["has_hud_data"] = 0
	}

	income := defaultMedianIncome
	if medianIncome != nil && *medianIncome > 0 {
		income = *medianIncome
	}
	out["median_income"] = income

	// Affordability indicator: annualized benchmark rent over area income.
	if hudRent != nil && *hudRent > 0 && medianIncome != nil && *medianIncome > 0 {
		out["rent_to_income_ratio"] = (*hudRent * 12) / *medianIncome
	} else {
		out["rent_to_income_ratio"] = defaultRentToIncome
	}

	if gis != nil {
		out["distance_to_school"] = gis.DistanceToSchool
		out["distance_to_grocery"] = gis.DistanceToGrocery
		out["distance_to_transit"] = gis.DistanceToTransit
		out["distance_to_park"] = gis.DistanceToPark
		out["schools_within_1mi"] = float64(gis.SchoolsWithin1Mi)
		out["transit_stops_within_half_mi"] = float64(gis.TransitStopsWithinHalfMi)
		out["restaurants_within_half_mi"] = float64(gis.RestaurantsWithinHalfMi)
		out["walkability_score"] = float64(gis.WalkabilityScore)
	} else {
		out["distance_to_school"] = 1.0
		out["distance_to_grocery"] = 1.0
		out["distance_to_transit"] = 1.0
		out["distance_to_park"] = 1.0
		out["schools_within_1mi"] = 1
		out["transit_stops_within_half_mi"] = 1
		out["restaurants_within_half_mi"] = 3
		out["walkability_score"] = 50
	}

	return out
}

// FeatureNames lists the core feature order the training pipeline emits.
// The artifact's own feature_names always wins at inference time.
func FeatureNames() []string {
	return []string{
		"bedrooms", "bathrooms", "sqft", "year_built", "age",
		"sqft_per_bed", "bath_bed_ratio", "latitude", "longitude",
		"lot_sqft", "lot_to_sqft_ratio",
		"has_garage", "has_ac", "has_pool", "pet_friendly",
		"is_single_family", "is_townhouse", "is_condo", "is_multi_family",
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
