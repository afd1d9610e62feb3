// internal/estimator/comps/matcher.go
package comps

import (
	"context"
	"math"
	"sort"

	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/common/metrics"
	"rent-estimator/internal/estimator/geo"
	"rent-estimator/internal/models"
)

// scamFloorRatio: a comp priced below this fraction of the benchmark is
// treated as a probable listing error, not a market signal.
const scamFloorRatio = 0.7

// priceCeiling excludes obviously broken listings from candidate fetch.
const priceCeiling = 10000

// CompQuery describes the subject property for matching.
type CompQuery struct {
	Latitude  float64
	Longitude float64
	Bedrooms  int
	Bathrooms *float64
	Sqft      *int
	YearBuilt *int

	// BenchmarkRent enables the scam filter when > 0.
	BenchmarkRent float64
}

// Result is the reduced output of one match call. Value is nil when no
// comps survive; Count always equals len(Comps).
type Result struct {
	Value *float64
	Comps []models.CompSummary
	Count int
}

// Matcher retrieves candidate rentals, scores them by similarity, filters
// suspected scams, and reduces to a representative rent. Pure over the
// fetched data: identical store contents give identical results.
type Matcher struct {
	store        Store
	law          ScoringLaw
	radiusMiles  float64
	lookbackDays int
	maxComps     int
	logger       logger.Logger
}

func NewMatcher(store Store, law ScoringLaw, radiusMiles float64, lookbackDays, maxComps int, log logger.Logger) *Matcher {
	return &Matcher{
		store:        store,
		law:          law,
		radiusMiles:  radiusMiles,
		lookbackDays: lookbackDays,
		maxComps:     maxComps,
		logger:       log.WithFields(map[string]interface{}{"component": "comps"}),
	}
}

// Match runs the full comparable pipeline. Store failure degrades to an
// empty result; callers treat that identically to "no comps found".
func (m *Matcher) Match(ctx context.Context, query CompQuery) Result {
	bedroomsMin := query.Bedrooms - 1
	if bedroomsMin < 0 {
		bedroomsMin = 0
	}

	candidates, err := m.store.Query(ctx, QueryParams{
		BedroomsMin:  bedroomsMin,
		BedroomsMax:  query.Bedrooms + 1,
		PriceMin:     0,
		PriceMax:     priceCeiling,
		LookbackDays: m.lookbackDays,
		Latitude:     query.Latitude,
		Longitude:    query.Longitude,
		RadiusMiles:  m.radiusMiles,
	})
	if err != nil {
		m.logger.Warn("comparables store unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.SourceErrors.WithLabelValues("comps", "COMPS_UNAVAILABLE").Inc()
		return Result{}
	}

	type scored struct {
		rec      models.ComparableRecord
		distance float64
		score    float64
	}

	kept := make([]scored, 0, len(candidates))
	for _, rec := range candidates {
		dist := geo.HaversineMiles(query.Latitude, query.Longitude, rec.Latitude, rec.Longitude)
		if dist > m.radiusMiles {
			metrics.CompsFiltered.WithLabelValues("out_of_radius").Inc()
			continue
		}

		if query.BenchmarkRent > 0 && rec.Price < scamFloorRatio*query.BenchmarkRent {
			metrics.CompsFiltered.WithLabelValues("scam").Inc()
			continue
		}

		kept = append(kept, scored{
			rec:      rec,
			distance: dist,
			score:    m.law.Score(query, rec, dist, m.radiusMiles),
		})
	}

	if len(kept) == 0 {
		return Result{}
	}

	// Score descending; address then price break ties so results stay
	// reproducible across runs.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		if kept[i].rec.Address != kept[j].rec.Address {
			return kept[i].rec.Address < kept[j].rec.Address
		}
		return kept[i].rec.Price < kept[j].rec.Price
	})

	if len(kept) > m.maxComps {
		kept = kept[:m.maxComps]
	}

	summaries := make([]models.CompSummary, 0, len(kept))
	prices := make([]float64, 0, len(kept))
	for _, s := range kept {
		summaries = append(summaries, models.CompSummary{
			Address:  s.rec.Address,
			Price:    s.rec.Price,
			Beds:     s.rec.Bedrooms,
			Baths:    s.rec.Bathrooms,
			Sqft:     s.rec.Sqft,
			Distance: roundTo(s.distance, 2),
			Score:    roundTo(s.score, 2),
		})
		prices = append(prices, s.rec.Price)
	}

	value := medianPrice(prices)

	return Result{
		Value: &value,
		Comps: summaries,
		Count: len(summaries),
	}
}

// medianPrice reduces kept comps to their representative rent: the upper
// median of the plainly sorted prices. Historically documented as a
// "weighted median" but never weighted; the simpler behavior is pinned.
func medianPrice(prices []float64) float64 {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
