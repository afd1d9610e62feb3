// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Zeebe     ZeebeConfig     `mapstructure:"zeebe"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Estimator EstimatorConfig `mapstructure:"estimator"`
	GIS       GISConfig       `mapstructure:"gis"`
	Model     ModelConfig     `mapstructure:"model"`
	Backfill  BackfillConfig  `mapstructure:"backfill"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ZeebeConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Estimation Pipeline Config ---

// EstimatorConfig holds the tunables of the triangulation pipeline.
type EstimatorConfig struct {
	RadiusMiles   float64 `mapstructure:"radius_miles"`
	LookbackDays  int     `mapstructure:"lookback_days"`
	MaxComps      int     `mapstructure:"max_comps"`
	ScoringLaw    string  `mapstructure:"scoring_law"`    // "additive" or "legacy"
	CompsStore    string  `mapstructure:"comps_store"`    // "postgres" or "elasticsearch"
	SourceTimeout int     `mapstructure:"source_timeout"` // milliseconds, per source
	BenchmarkTTL  int     `mapstructure:"benchmark_ttl"`  // seconds, redis cache
	SourceRetries int     `mapstructure:"source_retries"` // bounded retry on transient failure
	RetryBackoff  int     `mapstructure:"retry_backoff"`  // milliseconds, initial delay
}

// GISConfig holds settings for the Overpass proximity provider.
type GISConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OverpassURL  string `mapstructure:"overpass_url"`
	RadiusMeters int    `mapstructure:"radius_meters"`
	Timeout      int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds, redis cache
}

// ModelConfig holds settings for the frozen regression artifact.
type ModelConfig struct {
	ArtifactPath string `mapstructure:"artifact_path"`
}

// BackfillConfig holds settings for the batch rent backfill daemon.
type BackfillConfig struct {
	BatchSize    int `mapstructure:"batch_size"`
	PollInterval int `mapstructure:"poll_interval"` // seconds between idle checks
	ErrorBackoff int `mapstructure:"error_backoff"` // seconds after a failed loop
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
