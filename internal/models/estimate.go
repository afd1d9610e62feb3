// internal/models/estimate.go
package models

// Terminal method labels for an estimate.
const (
	MethodNonRentable      = "non_rentable_property_type"
	MethodInsufficientData = "insufficient_data"
)

// RentEstimate is the sole output contract of the triangulation pipeline.
// Created fresh per call and never mutated after construction.
type RentEstimate struct {
	EstimatedRent   float64 `json:"estimated_rent"`
	ConfidenceScore float64 `json:"confidence_score"`
	Method          string  `json:"method"`

	// Individual source values; nil when a source contributed nothing.
	HudFMR       *float64 `json:"hud_fmr"`
	CompsValue   *float64 `json:"comps_value"`
	MLPrediction *float64 `json:"ml_prediction"`

	CompCount    int                `json:"comp_count"`
	Comps        []CompSummary      `json:"comps"`
	PropertyType string             `json:"property_type,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	VariancePct  *float64           `json:"variance_pct"`
	WeightsUsed  map[string]float64 `json:"weights_used,omitempty"`
}
