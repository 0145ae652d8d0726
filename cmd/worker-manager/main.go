// cmd/worker-manager/main.go
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

	"go.uber.org/zap"

	"scholarship-engine/internal/common/camunda"
	"scholarship-engine/internal/common/config"
	"scholarship-engine/internal/common/database"
	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/observability"
	"scholarship-engine/internal/matching"
	"scholarship-engine/internal/modelregistry"
	"scholarship-engine/internal/prediction"
	"scholarship-engine/internal/sources"
	"scholarship-engine/internal/workers/scholarship/shared"

	cwc "scholarship-engine/internal/workers/model/clear-weight-cache"
	ee "scholarship-engine/internal/workers/scholarship/evaluate-eligibility"
	ms "scholarship-engine/internal/workers/scholarship/match-scholarships"
	ps "scholarship-engine/internal/workers/scholarship/predict-success"
)

// connectRetry is the backoff used for the data stores at startup.
var connectRetry = &camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// retryWithBackoff runs operation until it succeeds or the retry budget is spent.
func retryWithBackoff(ctx context.Context, operation func(context.Context) error, log *zap.Logger, operationName string) error {
	err := camunda.Retry(ctx, connectRetry, operation, func(attempt int, err error, next time.Duration) {
		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", connectRetry.MaxRetries),
			zap.Duration("nextRetryIn", next),
		)
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", operationName, err)
	}
	return nil
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting scholarship engine worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	log := logger.NewForService(cfg.Logging.Level, cfg.Logging.Format, cfg.App.Name, cfg.App.Version)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, cfg.Camunda.BrokerAddress, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL: model registry and student profiles ---
	var pg *database.PostgresClient
	err = retryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch: scholarship catalogue ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis: profile cache and optional weight cache ---
	var rdb *database.RedisClient
	err = retryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Engine ---
	registry, err := newModelRegistry(cfg.Engine.Model, pg)
	if err != nil {
		zapLog.Fatal("model registry init failed", zap.Error(err))
	}

	var weightCache prediction.WeightCache
	if cfg.Engine.Model.CacheBackend == config.CacheBackendRedis {
		weightCache = prediction.NewRedisWeightCache(rdb.Client, "")
	} else {
		weightCache = prediction.NewMemoryWeightCache(nil)
	}

	provider := prediction.NewWeightProvider(registry, weightCache, prediction.ProviderConfig{
		CacheTTL:     config.GetDuration(cfg.Engine.Model.CacheTTL),
		MinAccuracy:  cfg.Engine.Model.MinAccuracy,
		FetchTimeout: config.GetDuration(cfg.Engine.Model.FetchTimeout),
	}, log.WithFields(map[string]interface{}{"component": "weight-provider"}))

	resolver := &shared.Resolver{
		Students: sources.NewPostgresStudentSource(pg.DB, rdb.Client,
			config.GetDuration(cfg.Database.Redis.ProfileCacheTTL)),
		Scholarships: sources.NewElasticsearchScholarshipSource(esClient.Client,
			cfg.Database.Elasticsearch.ScholarshipIndex),
	}
	matcher := matching.NewMatcher(provider)

	// --- Workers ---
	workers := camunda.NewRegistry(zeebe.GetClient(), log)

	if config.IsWorkerEnabled(cfg, ee.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ee.TaskType)
		handler := ee.NewHandler(&ee.Config{Timeout: config.GetDuration(wcfg.Timeout)}, resolver, obs, log)
		workers.Start(ee.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, ps.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ps.TaskType)
		handler := ps.NewHandler(&ps.Config{Timeout: config.GetDuration(wcfg.Timeout)}, resolver, provider, obs, log)
		workers.Start(ps.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, ms.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ms.TaskType)
		handler := ms.NewHandler(&ms.Config{
			Timeout:           config.GetDuration(wcfg.Timeout),
			MaxParallel:       cfg.Engine.Match.MaxParallel,
			IncludeIneligible: cfg.Engine.Match.IncludeIneligible,
		}, resolver, matcher, obs, log)
		workers.Start(ms.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, cwc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, cwc.TaskType)
		handler := cwc.NewHandler(&cwc.Config{Timeout: config.GetDuration(wcfg.Timeout)}, provider, obs, log)
		workers.Start(cwc.TaskType, wcfg, handler.Handle)
	}

	zapLog.Info("Workers started", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Health, readiness and metrics ---
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler: newHealthMux(cfg.App.Name, map[string]pinger{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      pg.Ping,
			"elasticsearch": esClient.Ping,
			"redis":         rdb.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	workers.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("health server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

func newModelRegistry(cfg config.ModelConfig, pg *database.PostgresClient) (modelregistry.Registry, error) {
	if cfg.Registry == config.RegistryFile {
		return modelregistry.NewFileRegistry(cfg.RegistryPath)
	}
	return modelregistry.NewPostgresRegistry(pg.DB), nil
}
