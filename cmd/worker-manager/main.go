// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rent-estimator/internal/common/config"
	"rent-estimator/internal/common/database"
	httpclient "rent-estimator/internal/common/http"
	"rent-estimator/internal/common/logger"
	"rent-estimator/internal/common/observability"
	"rent-estimator/internal/estimator/benchmark"
	"rent-estimator/internal/estimator/comps"
	"rent-estimator/internal/estimator/model"
	"rent-estimator/internal/estimator/proximity"
	"rent-estimator/internal/estimator/triangulate"

	er "rent-estimator/internal/workers/estimation/estimate-rent"
)

// retryWithBackoff attempts to execute a function with exponential backoff
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
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting rent estimation worker...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Zeebe.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
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

	// --- Register Worker ---
	handler := er.NewHandler(
		&er.Config{
			Timeout: config.GetDuration(cfg.Zeebe.Timeout),
		},
		estimator, log,
	)
	startWorker(zeebeClient, er.TaskType, cfg.Zeebe, handler.Handle, zapLog)

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Rent estimation worker stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, zcfg config.ZeebeConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(zcfg.MaxJobsActive).
		Timeout(time.Duration(zcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", zcfg.MaxJobsActive),
		zap.Int("timeout_ms", zcfg.Timeout),
	)
}
