// internal/estimator/comps/scoring.go
package comps

import (
	"math"

	"rent-estimator/internal/models"
)

// ScoringLaw selects one of the two similarity formulas. A deployment picks
// exactly one; the laws are never mixed within a result.
type ScoringLaw int

const (
	// LawAdditive is the default: distance decay plus a bedroom-match bonus.
	// Exact matches get +0.25, near matches +0.15 (a bonus, not a penalty,
	// so near-matches are not zeroed out).
	LawAdditive ScoringLaw = iota

	// LawLegacy multiplies the distance-decay base by attribute penalties.
	// Used historically for broader comp sets.
	LawLegacy
)

func ParseScoringLaw(s string) ScoringLaw {
	if s == "legacy" {
		return LawLegacy
	}
	return LawAdditive
}

func (l ScoringLaw) String() string {
	if l == LawLegacy {
		return "legacy"
	}
	return "additive"
}

// Score computes the similarity of a candidate to the query. distance must
// already be validated as <= radius.
func (l ScoringLaw) Score(query CompQuery, rec models.ComparableRecord, distance, radius float64) float64 {
	base := 1.0 * (1 - distance/radius)

	if l == LawAdditive {
		if rec.Bedrooms == query.Bedrooms {
			return base + 0.25
		}
		return base + 0.15
	}

	return legacyScore(query, rec, base)
}

func legacyScore(query CompQuery, rec models.ComparableRecord, score float64) float64 {
	if rec.Bedrooms != query.Bedrooms {
		score *= 0.85
	}

	if query.Bathrooms != nil && rec.Bathrooms != nil &&
		math.Abs(*rec.Bathrooms-*query.Bathrooms) > 0.5 {
		score *= 0.9
	}

	if query.Sqft != nil && *query.Sqft > 0 && rec.Sqft != nil {
		sqftDiff := math.Abs(float64(*rec.Sqft)-float64(*query.Sqft)) / float64(*query.Sqft)
		if sqftDiff > 0.2 {
			score *= 0.9
		}
		if sqftDiff > 0.5 {
			score *= 0.8
		}
	}

	if query.YearBuilt != nil && rec.YearBuilt != nil {
		diff := *rec.YearBuilt - *query.YearBuilt
		if diff < 0 {
			diff = -diff
		}
		if diff > 15 {
			score *= 0.9
		}
		if diff > 30 {
			score *= 0.85
		}
	}

	return score
}
