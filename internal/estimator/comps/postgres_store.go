// internal/estimator/comps/postgres_store.go
package comps

import (
	"context"
	"database/sql"
	"fmt"

	"rent-estimator/internal/models"
)

// PostgresStore reads candidates from the rental_listings table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Query(ctx context.Context, params QueryParams) ([]models.ComparableRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			address, price, bedrooms, bathrooms, sqft, year_built,
			latitude, longitude, created_at
		FROM rental_listings
		WHERE
			latitude IS NOT NULL
			AND longitude IS NOT NULL
			AND price > $1
			AND price < $2
			AND bedrooms BETWEEN $3 AND $4
			AND created_at > NOW() - ($5 * INTERVAL '1 day')`,
		params.PriceMin, params.PriceMax,
		params.BedroomsMin, params.BedroomsMax,
		params.LookbackDays,
	)
	if err != nil {
		return nil, fmt.Errorf("query rental_listings: %w", err)
	}
	defer rows.Close()

	var records []models.ComparableRecord
	for rows.Next() {
		var rec models.ComparableRecord
		var bathrooms sql.NullFloat64
		var sqft, yearBuilt sql.NullInt64

		if err := rows.Scan(
			&rec.Address, &rec.Price, &rec.Bedrooms, &bathrooms, &sqft, &yearBuilt,
			&rec.Latitude, &rec.Longitude, &rec.ListedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rental listing: %w", err)
		}

		if bathrooms.Valid {
			v := bathrooms.Float64
			rec.Bathrooms = &v
		}
		if sqft.Valid {
			v := int(sqft.Int64)
			rec.Sqft = &v
		}
		if yearBuilt.Valid {
			v := int(yearBuilt.Int64)
			rec.YearBuilt = &v
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rental listings: %w", err)
	}

	return records, nil
}
