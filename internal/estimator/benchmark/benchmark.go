// internal/estimator/benchmark/benchmark.go
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Source looks up the authoritative SAFMR baseline rent for a zip code and
// bedroom count. Lookup never returns an error: missing entries, malformed
// zips and store failures all read as "absent".
type Source struct {
	store  Store
	cache  *redis.Client // optional read-through cache
	ttl    time.Duration
	logger logger.Logger
}

func NewSource(store Store, cache *redis.Client, ttl time.Duration, log logger.Logger) *Source {
	return &Source{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "benchmark"}),
	}
}

// Lookup returns the SAFMR rent for the zip and bedroom count, or ok=false
// when no benchmark is available.
func (s *Source) Lookup(ctx context.Context, zipCode string, bedrooms int) (float64, bool) {
	zip := NormalizeZip(zipCode)
	if zip == "" {
		return 0, false
	}

	table, err := s.getTable(ctx, zip)
	if err != nil {
		s.logger.Warn("benchmark store unavailable", map[string]interface{}{
			"zip":   zip,
			"error": err.Error(),
		})
		metrics.SourceErrors.WithLabelValues("hud", "BENCHMARK_UNAVAILABLE").Inc()
		return 0, false
	}
	if table == nil {
		return 0, false
	}

	rent, ok := table[BedroomKey(bedrooms)]
	if !ok || rent <= 0 {
		return 0, false
	}
	return rent, true
}

func (s *Source) getTable(ctx context.Context, zip string) (map[string]float64, error) {
	cacheKey := "safmr:" + zip

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var table map[string]float64
			if err := json.Unmarshal([]byte(val), &table); err == nil {
				return table, nil
			}
		}
	}

	table, err := s.store.Get(ctx, zip)
	if err != nil {
		return nil, err
	}

	if table != nil && s.cache != nil {
		if data, err := json.Marshal(table); err == nil {
			s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return table, nil
}

// NormalizeZip reduces a raw zip string to its 5-digit form. Trailing
// decimal artifacts ("44109.0") and ZIP+4 suffixes ("44109-1234") are
// stripped; anything that does not reduce to 5 digits is malformed and
// returns "".
func NormalizeZip(raw string) string {
	zip := strings.TrimSpace(raw)

	if i := strings.IndexByte(zip, '.'); i >= 0 {
		zip = zip[:i]
	}
	if i := strings.IndexByte(zip, '-'); i >= 0 {
		zip = zip[:i]
	}

	if len(zip) != 5 {
		return ""
	}
	for _, r := range zip {
		if !unicode.IsDigit(r) {
			return ""
		}
	}
	return zip
}

// BedroomKey maps a bedroom count to its SAFMR table key ("3br").
func BedroomKey(bedrooms int) string {
	return fmt.Sprintf("%dbr", bedrooms)
}
