// internal/estimator/comps/postgres_store_test.go
package comps

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	listedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"address", "price", "bedrooms", "bathrooms", "sqft", "year_built",
		"latitude", "longitude", "created_at",
	}).
		AddRow("100 Main St", 1250.0, 3, 2.0, 1400, 1987, 41.49, -81.70, listedAt).
		AddRow("200 Oak Ave", 1100.0, 2, nil, nil, nil, 41.50, -81.69, listedAt)

	mock.ExpectQuery(`SELECT(?s).+FROM rental_listings`).
		WithArgs(0.0, 10000.0, 2, 4, 90).
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	records, err := store.Query(context.Background(), QueryParams{
		BedroomsMin:  2,
		BedroomsMax:  4,
		PriceMin:     0,
		PriceMax:     10000,
		LookbackDays: 90,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "100 Main St", records[0].Address)
	assert.Equal(t, 1250.0, records[0].Price)
	require.NotNil(t, records[0].Bathrooms)
	assert.Equal(t, 2.0, *records[0].Bathrooms)
	require.NotNil(t, records[0].Sqft)
	assert.Equal(t, 1400, *records[0].Sqft)
	require.NotNil(t, records[0].YearBuilt)
	assert.Equal(t, 1987, *records[0].YearBuilt)

	// Nullable attributes stay nil.
	assert.Nil(t, records[1].Bathrooms)
	assert.Nil(t, records[1].Sqft)
	assert.Nil(t, records[1].YearBuilt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT(?s).+FROM rental_listings`).
		WillReturnError(assert.AnError)

	store := NewPostgresStore(db)
	_, err = store.Query(context.Background(), QueryParams{
		BedroomsMin: 2, BedroomsMax: 4, PriceMax: 10000, LookbackDays: 90,
	})
	assert.Error(t, err)
}
