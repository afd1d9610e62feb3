// internal/estimator/benchmark/benchmark_test.go
package benchmark

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rent-estimator/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newSource(t *testing.T, db *sql.DB, cache *redis.Client) *Source {
	return NewSource(NewPostgresStore(db), cache, time.Hour, logger.NewTestLogger(t))
}

const safmrJSON = `{"0br": 700, "1br": 800, "2br": 950, "3br": 1200, "4br": 1400}`

// ==========================
// Zip Normalization
// ==========================

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain zip", "44109", "44109"},
		{"decimal artifact", "44109.0", "44109"},
		{"zip plus four", "44109-1234", "44109"},
		{"whitespace", " 44109 ", "44109"},
		{"too short", "4410", ""},
		{"too long", "441095", ""},
		{"alpha", "4410a", ""},
		{"empty", "", ""},
		{"only dot", ".", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeZip(tt.raw))
		})
	}
}

func TestBedroomKey(t *testing.T) {
	assert.Equal(t, "0br", BedroomKey(0))
	assert.Equal(t, "3br", BedroomKey(3))
	assert.Equal(t, "4br", BedroomKey(4))
}

// ==========================
// Lookup
// ==========================

func TestLookup_Found(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(safmrJSON)))

	rent, ok := src.Lookup(context.Background(), "44109", 3)
	assert.True(t, ok)
	assert.Equal(t, 1200.0, rent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_ZipWithDecimalArtifact(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(safmrJSON)))

	rent, ok := src.Lookup(context.Background(), "44109.0", 2)
	assert.True(t, ok)
	assert.Equal(t, 950.0, rent)
}

func TestLookup_MissingZipEntry(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("99999").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}))

	_, ok := src.Lookup(context.Background(), "99999", 3)
	assert.False(t, ok)
}

func TestLookup_MalformedZipSkipsStore(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	// No query expectation: a malformed zip must short-circuit before the store.
	_, ok := src.Lookup(context.Background(), "not-a-zip", 3)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_MissingBedroomKey(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(safmrJSON)))

	_, ok := src.Lookup(context.Background(), "44109", 7)
	assert.False(t, ok)
}

func TestLookup_StoreFailureIsAbsentNotError(t *testing.T) {
	db, mock := newMockDB(t)
	src := newSource(t, db, nil)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnError(sql.ErrConnDone)

	_, ok := src.Lookup(context.Background(), "44109", 3)
	assert.False(t, ok)
}

func TestLookup_CacheHitSkipsStore(t *testing.T) {
	db, mock := newMockDB(t)
	cache := newTestRedis(t)
	src := newSource(t, db, cache)

	require.NoError(t, cache.Set(context.Background(), "safmr:44109", safmrJSON, time.Hour).Err())

	rent, ok := src.Lookup(context.Background(), "44109", 1)
	assert.True(t, ok)
	assert.Equal(t, 800.0, rent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_CacheMissPopulatesCache(t *testing.T) {
	db, mock := newMockDB(t)
	cache := newTestRedis(t)
	src := newSource(t, db, cache)

	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44113").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(`{"3br": 1700}`)))

	rent, ok := src.Lookup(context.Background(), "44113", 3)
	require.True(t, ok)
	assert.Equal(t, 1700.0, rent)

	cached, err := cache.Get(context.Background(), "safmr:44113").Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"3br": 1700}`, cached)
}

func TestLookup_CacheFailureFallsThroughToStore(t *testing.T) {
	db, mock := newMockDB(t)
	cache, redisMock := redismock.NewClientMock()
	src := newSource(t, db, cache)

	redisMock.ExpectGet("safmr:44109").SetErr(context.DeadlineExceeded)
	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(safmrJSON)))

	rent, ok := src.Lookup(context.Background(), "44109", 3)
	assert.True(t, ok)
	assert.Equal(t, 1200.0, rent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_CorruptCacheEntryFallsThroughToStore(t *testing.T) {
	db, mock := newMockDB(t)
	cache, redisMock := redismock.NewClientMock()
	src := newSource(t, db, cache)

	redisMock.ExpectGet("safmr:44109").SetVal("{not json")
	mock.ExpectQuery(`SELECT safmr_data FROM market_benchmarks`).
		WithArgs("44109").
		WillReturnRows(sqlmock.NewRows([]string{"safmr_data"}).AddRow([]byte(safmrJSON)))

	rent, ok := src.Lookup(context.Background(), "44109", 3)
	assert.True(t, ok)
	assert.Equal(t, 1200.0, rent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
