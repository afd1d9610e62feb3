// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DB_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when not present.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills remaining gaps from plain environment variables.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Model.ArtifactPath == "" {
		if val := os.Getenv("MODEL_ARTIFACT_PATH"); val != "" {
			cfg.Model.ArtifactPath = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Zeebe.MaxJobsActive == 0 {
		cfg.Zeebe.MaxJobsActive = 10
	}
	if cfg.Zeebe.Timeout == 0 {
		cfg.Zeebe.Timeout = 30000
	}
	if cfg.Zeebe.RequestTimeout == 0 {
		cfg.Zeebe.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "rental_listings"
	}

	// Estimation defaults mirror the production pipeline parameters.
	if cfg.Estimator.RadiusMiles == 0 {
		cfg.Estimator.RadiusMiles = 2.0
	}
	if cfg.Estimator.LookbackDays == 0 {
		cfg.Estimator.LookbackDays = 90
	}
	if cfg.Estimator.MaxComps == 0 {
		cfg.Estimator.MaxComps = 15
	}
	if cfg.Estimator.ScoringLaw == "" {
		cfg.Estimator.ScoringLaw = "additive"
	}
	if cfg.Estimator.CompsStore == "" {
		cfg.Estimator.CompsStore = "postgres"
	}
	if cfg.Estimator.SourceTimeout == 0 {
		cfg.Estimator.SourceTimeout = 10000
	}
	if cfg.Estimator.BenchmarkTTL == 0 {
		cfg.Estimator.BenchmarkTTL = 3600
	}
	if cfg.Estimator.SourceRetries == 0 {
		cfg.Estimator.SourceRetries = 3
	}
	if cfg.Estimator.RetryBackoff == 0 {
		cfg.Estimator.RetryBackoff = 250
	}

	if cfg.GIS.OverpassURL == "" {
		cfg.GIS.OverpassURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.GIS.RadiusMeters == 0 {
		cfg.GIS.RadiusMeters = 2000
	}
	if cfg.GIS.Timeout == 0 {
		cfg.GIS.Timeout = 30000
	}
	if cfg.GIS.CacheTTL == 0 {
		cfg.GIS.CacheTTL = 86400
	}

	if cfg.Backfill.BatchSize == 0 {
		cfg.Backfill.BatchSize = 500
	}
	if cfg.Backfill.PollInterval == 0 {
		cfg.Backfill.PollInterval = 60
	}
	if cfg.Backfill.ErrorBackoff == 0 {
		cfg.Backfill.ErrorBackoff = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Estimator.CompsStore == "elasticsearch" && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when comps_store is elasticsearch")
	}

	switch cfg.Estimator.ScoringLaw {
	case "additive", "legacy":
	default:
		return fmt.Errorf("estimator.scoring_law must be additive or legacy, got %q", cfg.Estimator.ScoringLaw)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
