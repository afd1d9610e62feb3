// internal/estimator/comps/matcher_test.go
package comps

import (
	"context"
	"errors"
	"testing"
	"time"

	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeStore returns canned candidates, asserting nothing about params.
type fakeStore struct {
	records []models.ComparableRecord
	err     error
}

func (f *fakeStore) Query(_ context.Context, _ QueryParams) ([]models.ComparableRecord, error) {
	return f.records, f.err
}

// subject property near downtown Cleveland
const (
	subjectLat = 41.4993
	subjectLon = -81.6944
)

func newMatcher(t *testing.T, store Store) *Matcher {
	return NewMatcher(store, LawAdditive, 2.0, 90, 15, logger.NewTestLogger(t))
}

// listing creates a comparable offset north of the subject by approximately
// deltaMiles (1 degree latitude ~ 69 miles).
func listing(address string, price float64, beds int, deltaMiles float64) models.ComparableRecord {
	return models.ComparableRecord{
		Address:   address,
		Price:     price,
		Bedrooms:  beds,
		Latitude:  subjectLat + deltaMiles/69.0,
		Longitude: subjectLon,
		ListedAt:  time.Now().Add(-24 * time.Hour),
	}
}

// ==========================
// Core Matching
// ==========================

func TestMatch_KeepsOnlyWithinRadius(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 Near St", 1200, 3, 0.5),
		listing("200 Mid Ave", 1250, 3, 1.5),
		listing("300 Far Rd", 1300, 3, 3.0), // outside 2.0 mile radius
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	require.Equal(t, 2, result.Count)
	for _, c := range result.Comps {
		assert.LessOrEqual(t, c.Distance, 2.0)
	}
}

func TestMatch_ScamFilterDiscardsBelowBenchmarkFloor(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 Fair St", 1200, 3, 0.5),
		listing("200 Scam Ave", 700, 3, 0.5), // below 0.7 * 1200 = 840
		listing("300 Floor Rd", 840, 3, 0.5), // exactly at the floor, kept
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
		BenchmarkRent: 1200,
	})

	require.Equal(t, 2, result.Count)
	for _, c := range result.Comps {
		assert.GreaterOrEqual(t, c.Price, 0.7*1200)
	}
}

func TestMatch_NoBenchmarkSkipsScamFilter(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 Cheap St", 500, 3, 0.5),
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	assert.Equal(t, 1, result.Count)
}

func TestMatch_RanksByScoreDescending(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 Far St", 1200, 3, 1.8),
		listing("200 Close Ave", 1250, 3, 0.2),
		listing("300 Mid Rd", 1300, 2, 0.2), // near bedroom match scores lower
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	require.Equal(t, 3, result.Count)
	assert.Equal(t, "200 Close Ave", result.Comps[0].Address)
	for i := 1; i < len(result.Comps); i++ {
		assert.GreaterOrEqual(t, result.Comps[i-1].Score, result.Comps[i].Score)
	}
}

func TestMatch_TrimsToMaxComps(t *testing.T) {
	var records []models.ComparableRecord
	for i := 0; i < 30; i++ {
		records = append(records, listing(
			string(rune('A'+i))+" Street", 1000+float64(i)*10, 3, 0.5))
	}
	store := &fakeStore{records: records}

	m := NewMatcher(store, LawAdditive, 2.0, 90, 10, logger.NewTestLogger(t))
	result := m.Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	assert.Equal(t, 10, result.Count)
	assert.Len(t, result.Comps, 10)
}

func TestMatch_CountAlwaysEqualsLen(t *testing.T) {
	stores := []*fakeStore{
		{records: nil},
		{records: []models.ComparableRecord{listing("100 A St", 1200, 3, 0.5)}},
		{err: errors.New("connection refused")},
	}

	for _, store := range stores {
		result := newMatcher(t, store).Match(context.Background(), CompQuery{
			Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
		})
		assert.Equal(t, result.Count, len(result.Comps))
	}
}

func TestMatch_StoreFailureDegradesToEmpty(t *testing.T) {
	store := &fakeStore{err: errors.New("dial tcp: connection refused")}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	assert.Nil(t, result.Value)
	assert.Empty(t, result.Comps)
	assert.Zero(t, result.Count)
}

func TestMatch_NoSurvivorsReturnsAbsent(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 Far St", 1200, 3, 5.0),
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	assert.Nil(t, result.Value)
	assert.Zero(t, result.Count)
}

func TestMatch_Deterministic(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 A St", 1200, 3, 0.5),
		listing("200 B St", 1250, 3, 0.5),
		listing("300 C St", 1100, 2, 1.0),
	}}
	m := newMatcher(t, store)
	query := CompQuery{Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3}

	first := m.Match(context.Background(), query)
	for i := 0; i < 5; i++ {
		again := m.Match(context.Background(), query)
		assert.Equal(t, first, again)
	}
}

// ==========================
// Median Reducer (pinned behavior)
// ==========================

// The reducer was historically documented as a weighted median but has
// always computed the plain upper median of sorted prices. That behavior
// is pinned here on purpose.
func TestMedianPrice_UnweightedUpperMedian(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected float64
	}{
		{"single", []float64{1200}, 1200},
		{"two takes upper", []float64{1000, 1400}, 1400},
		{"odd takes middle", []float64{1300, 1100, 1200}, 1200},
		{"four takes upper middle", []float64{1000, 1100, 1200, 1300}, 1200},
		{"scenario A five comps", []float64{1300, 1250, 1200, 1400, 1100}, 1250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, medianPrice(tt.prices))
		})
	}
}

func TestMatch_RepresentativeRentIsMedianOfKeptComps(t *testing.T) {
	store := &fakeStore{records: []models.ComparableRecord{
		listing("100 A St", 1300, 3, 0.3),
		listing("200 B St", 1250, 3, 0.4),
		listing("300 C St", 1200, 3, 0.5),
		listing("400 D St", 1400, 3, 0.6),
		listing("500 E St", 1100, 3, 0.7),
	}}

	result := newMatcher(t, store).Match(context.Background(), CompQuery{
		Latitude: subjectLat, Longitude: subjectLon, Bedrooms: 3,
	})

	require.NotNil(t, result.Value)
	assert.Equal(t, 1250.0, *result.Value)
	assert.Equal(t, 5, result.Count)
}
