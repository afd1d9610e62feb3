// internal/estimator/proximity/provider.go
package proximity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rent-estimator/internal/common/http"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"

	"github.com/redis/go-redis/v9"
)

// maxDistanceMiles is the sentinel when a category has no POI in range.
const maxDistanceMiles = 2.0

// Provider computes proximity features from OpenStreetMap data, with a
// shared TTL cache in front of the Overpass API. A nil redis client
// disables caching, not the provider.
type Provider struct {
	overpass *overpassClient
	cache    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewProvider(endpoint string, radiusMeters int, client *http.Client, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Provider {
	return &Provider{
		overpass: newOverpassClient(endpoint, radiusMeters, client),
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "proximity"}),
	}
}

// Features computes GIS features for a coordinate. An Overpass failure is
// returned as an error; callers fall back to the model's GIS defaults.
func (p *Provider) Features(ctx context.Context, lat, lon float64) (*models.GISFeatures, error) {
	key := p.cacheKey(lat, lon)

	if cached := p.readCache(ctx, key); cached != nil {
		return cached, nil
	}

	pois, err := p.overpass.nearbyPOIs(ctx, lat, lon)
	if err != nil {
		p.logger.Warn("overpass query failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	features := reduceFeatures(pois)
	p.writeCache(ctx, key, features)
	return features, nil
}

// cacheKey buckets coordinates at 3 decimals (~360ft) so nearby
// properties share POI results.
func (p *Provider) cacheKey(lat, lon float64) string {
	return fmt.Sprintf("poi:%.3f_%.3f_%d", lat, lon, p.overpass.radiusMeters)
}

func (p *Provider) readCache(ctx context.Context, key string) *models.GISFeatures {
	if p.cache == nil {
		return nil
	}
	raw, err := p.cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var features models.GISFeatures
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil
	}
	return &features
}

func (p *Provider) writeCache(ctx context.Context, key string, features *models.GISFeatures) {
	if p.cache == nil {
		return
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.cacheTTL).Err(); err != nil {
		p.logger.Debug("poi cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// reduceFeatures folds categorized POIs into the feature struct. Buckets
// arrive sorted by distance ascending.
func reduceFeatures(pois map[string][]poi) *models.GISFeatures {
	features := &models.GISFeatures{
		DistanceToSchool:  nearestDistance(pois[categorySchools]),
		DistanceToGrocery: nearestDistance(pois[categoryGrocery]),
		DistanceToTransit: nearestDistance(pois[categoryTransit]),
		DistanceToPark:    nearestDistance(pois[categoryParks]),

		SchoolsWithin1Mi:         countWithin(pois[categorySchools], 1.0),
		TransitStopsWithinHalfMi: countWithin(pois[categoryTransit], 0.5),
		RestaurantsWithinHalfMi:  countWithin(pois[categoryRestaurants], 0.5),
	}
	features.WalkabilityScore = walkabilityScore(features)
	return features
}

func nearestDistance(sorted []poi) float64 {
	if len(sorted) == 0 {
		return maxDistanceMiles
	}
	return sorted[0].DistanceMiles
}

func countWithin(pois []poi, miles float64) int {
	n := 0
	for _, p := range pois {
		if p.DistanceMiles <= miles {
			n++
		}
	}
	return n
}

// walkabilityScore is a 0-100 proxy built from grocery access, transit
// density, restaurant density, and park and school proximity.
func walkabilityScore(f *models.GISFeatures) int {
	score := 0

	switch {
	case f.DistanceToGrocery < 0.5:
		score += 25
	case f.DistanceToGrocery < 1.0:
		score += 15
	}

	switch {
	case f.TransitStopsWithinHalfMi >= 2:
		score += 25
	case f.TransitStopsWithinHalfMi >= 1:
		score += 15
	}

	switch {
	case f.RestaurantsWithinHalfMi >= 5:
		score += 25
	case f.RestaurantsWithinHalfMi >= 2:
		score += 15
	}

	switch {
	case f.DistanceToPark < 0.5:
		score += 15
	case f.DistanceToPark < 1.0:
		score += 10
	}

	if f.DistanceToSchool < 1.0 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
