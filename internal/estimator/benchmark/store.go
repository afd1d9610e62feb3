// internal/estimator/benchmark/store.go
package benchmark

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Store fetches the SAFMR table for a zip code. A nil map with nil error
// means the zip has no benchmark entry.
type Store interface {
	Get(ctx context.Context, zipCode string) (map[string]float64, error)
}

// PostgresStore reads SAFMR tables from the market_benchmarks JSONB column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, zipCode string) (map[string]float64, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT safmr_data FROM market_benchmarks WHERE zip_code = $1`, zipCode)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("benchmark lookup for %s: %w", zipCode, err)
	}

	var table map[string]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode safmr_data for %s: %w", zipCode, err)
	}

	return table, nil
}
