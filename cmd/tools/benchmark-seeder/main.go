// cmd/tools/benchmark-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"rent-estimator/internal/common/config"
	"rent-estimator/internal/common/database"
)

// Static SAFMR seed for the target markets, used until a HUD API token is
// provisioned. Keys are bedroom-count tags, values are monthly rents.
var staticSeed = map[string]map[string]float64{
	"44109": {"0br": 700, "1br": 800, "2br": 950, "3br": 1200, "4br": 1400},
	"44111": {"0br": 750, "1br": 850, "2br": 1000, "3br": 1250, "4br": 1450},
	"44135": {"0br": 720, "1br": 820, "2br": 980, "3br": 1220, "4br": 1420},
	"44104": {"0br": 650, "1br": 750, "2br": 900, "3br": 1100, "4br": 1300},
	"44105": {"0br": 680, "1br": 780, "2br": 920, "3br": 1150, "4br": 1350},
	"44108": {"0br": 660, "1br": 760, "2br": 910, "3br": 1120, "4br": 1320},
	"44110": {"0br": 670, "1br": 770, "2br": 930, "3br": 1140, "4br": 1340},
	"44113": {"0br": 900, "1br": 1100, "2br": 1400, "3br": 1700, "4br": 2000},
	"44102": {"0br": 800, "1br": 950, "2br": 1150, "3br": 1400, "4br": 1600},
	"44128": {"0br": 750, "1br": 850, "2br": 1050, "3br": 1300, "4br": 1500},
	"44134": {"0br": 800, "1br": 900, "2br": 1100, "3br": 1350, "4br": 1550},
	"44144": {"0br": 780, "1br": 880, "2br": 1080, "3br": 1320, "4br": 1520},
	"44120": {"0br": 700, "1br": 800, "2br": 1000, "3br": 1250, "4br": 1450},
	"44130": {"0br": 850, "1br": 950, "2br": 1150, "3br": 1450, "4br": 1650},
	"44121": {"0br": 820, "1br": 920, "2br": 1120, "3br": 1400, "4br": 1600},
	"44129": {"0br": 810, "1br": 910, "2br": 1110, "3br": 1380, "4br": 1580},
	"44119": {"0br": 710, "1br": 810, "2br": 960, "3br": 1180, "4br": 1380},
	"44112": {"0br": 640, "1br": 740, "2br": 890, "3br": 1090, "4br": 1290},
	"44126": {"0br": 950, "1br": 1050, "2br": 1250, "3br": 1550, "4br": 1750},
	"44143": {"0br": 900, "1br": 1000, "2br": 1200, "3br": 1500, "4br": 1700},
	"44124": {"0br": 920, "1br": 1020, "2br": 1220, "3br": 1520, "4br": 1720},
	"44122": {"0br": 980, "1br": 1100, "2br": 1350, "3br": 1650, "4br": 1900},
	"46220": {"0br": 950, "1br": 1050, "2br": 1250, "3br": 1550, "4br": 1750},
	"46204": {"0br": 1100, "1br": 1300, "2br": 1600, "3br": 2000, "4br": 2400},
}

func main() {
	dataPath := flag.String("data", "", "Optional path to a JSON file of {zip: {bedroom_tag: rent}}")
	flag.Parse()

	seed := staticSeed
	if *dataPath != "" {
		loaded, err := loadSeedFile(*dataPath)
		if err != nil {
			fmt.Printf("Error loading seed file: %v\n", err)
			os.Exit(1)
		}
		seed = loaded
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	updated := 0
	for zipCode, rents := range seed {
		if err := upsertBenchmark(ctx, pg.GetDB(), zipCode, rents); err != nil {
			fmt.Printf("Error updating benchmark for %s: %v\n", zipCode, err)
			continue
		}
		updated++
	}

	fmt.Printf("Benchmark seed complete: %d of %d zips updated\n", updated, len(seed))
}

func loadSeedFile(path string) (map[string]map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed map[string]map[string]float64
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func upsertBenchmark(ctx context.Context, db *sql.DB, zipCode string, rents map[string]float64) error {
	payload, err := json.Marshal(rents)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO market_benchmarks (zip_code, safmr_data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (zip_code)
		DO UPDATE SET safmr_data = EXCLUDED.safmr_data, updated_at = NOW()`,
		zipCode, payload)
	return err
}
