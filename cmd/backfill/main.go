// cmd/backfill/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rent-estimator/internal/backfill"
	"rent-estimator/internal/common/config"
	"rent-estimator/internal/common/database"
	httpclient "rent-estimator/internal/common/http"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/estimator/benchmark"
	"rent-estimator/internal/estimator/comps"
	"rent-estimator/internal/estimator/model"
	"rent-estimator/internal/estimator/proximity"
	"rent-estimator/internal/estimator/triangulate"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting rent backfill daemon...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init comparables store ---
	var compsStore comps.Store
	switch cfg.Estimator.CompsStore {
	case "elasticsearch":
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch init failed", zap.Error(err))
		}
		compsStore = comps.NewElasticStore(esClient.Client, cfg.Database.Elasticsearch.Index)
	default:
		compsStore = comps.NewPostgresStore(pg.GetDB())
	}

	// --- Assemble estimation pipeline ---
	benchmarkSource := benchmark.NewSource(
		benchmark.NewPostgresStore(pg.GetDB()),
		redis.GetClient(),
		time.Duration(cfg.Estimator.BenchmarkTTL)*time.Second,
		log,
	)

	matcher := comps.NewMatcher(
		compsStore,
		comps.ParseScoringLaw(cfg.Estimator.ScoringLaw),
		cfg.Estimator.RadiusMiles,
		cfg.Estimator.LookbackDays,
		cfg.Estimator.MaxComps,
		log,
	)

	modelSource, err := model.NewSource(cfg.Model.ArtifactPath, log)
	if err != nil {
		zapLog.Fatal("model artifact load failed", zap.Error(err))
	}

	var gisProvider triangulate.ProximityProvider
	if cfg.GIS.Enabled {
		gisProvider = proximity.NewProvider(
			cfg.GIS.OverpassURL,
			cfg.GIS.RadiusMeters,
			httpclient.NewRetryingClient(
				config.GetDuration(cfg.GIS.Timeout),
				cfg.Estimator.SourceRetries,
				config.GetDuration(cfg.Estimator.RetryBackoff),
			),
			redis.GetClient(),
			time.Duration(cfg.GIS.CacheTTL)*time.Second,
			log,
		)
	}

	estimator := triangulate.NewTriangulator(
		benchmarkSource,
		matcher,
		modelSource,
		gisProvider,
		config.GetDuration(cfg.Estimator.SourceTimeout),
		log,
	)

	daemon := backfill.NewDaemon(
		pg.GetDB(),
		estimator,
		cfg.Backfill.BatchSize,
		time.Duration(cfg.Backfill.PollInterval)*time.Second,
		time.Duration(cfg.Backfill.ErrorBackoff)*time.Second,
		log,
	)

	// --- Metrics Server ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening on :8081")
		if err := http.ListenAndServe(":8081", nil); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		zapLog.Info("Shutdown signal received, stopping daemon...")
		cancel()
	}()

	if err := daemon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLog.Fatal("daemon stopped with error", zap.Error(err))
	}

	zapLog.Info("Backfill daemon stopped gracefully")
}
