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

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"placement-workers/internal/common/camunda"
	"placement-workers/internal/common/config"
	"placement-workers/internal/common/database"
	"placement-workers/internal/common/logger"
	"placement-workers/internal/common/observability"
	"placement-workers/internal/repository"
	"placement-workers/internal/search"
	"placement-workers/pkg/registry"

	chm "placement-workers/internal/workers/placement/compute-home-matches"
	uhp "placement-workers/internal/workers/placement/update-home-profile"
	urs "placement-workers/internal/workers/placement/update-referral-status"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// openAndPing closes the client again when the ping fails so a retry does
// not leave its pool behind.
func openAndPing[T pingCloser](ctx context.Context, open func() (T, error)) (T, error) {
	var zero T
	client, err := open()
	if err != nil {
		return zero, err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return zero, err
	}
	return client, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.Build(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Environment,
	})
	if err != nil {
		logger.New("info", "console").Fatal("logger build failed", zap.Error(err))
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	log.Info("Starting worker manager...", map[string]interface{}{"version": cfg.App.Version})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel metrics disabled", map[string]interface{}{"error": err})
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	camundaCfg := camunda.ConfigFrom(cfg.Camunda)
	camundaCfg.RetryConfig = &camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	zeebe, err := camunda.NewClientWithConfig(camundaCfg)
	if err != nil {
		zapLog.Fatal("zeebe client init failed", zap.Error(err))
	}
	if err := zeebe.WaitReady(ctx); err != nil {
		zapLog.Fatal("zeebe gateway unreachable", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = openAndPing(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		})
		return err
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	log.Info("PostgreSQL connected successfully", nil)

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = openAndPing(ctx, func() (*database.RedisClient, error) {
			return database.NewRedis(cfg.Database.Redis)
		})
		return err
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connected successfully", nil)

	checks := []readinessCheck{
		{name: "zeebe", ping: zeebe.HealthCheck},
		{name: "postgres", ping: pg.Ping},
		{name: "redis", ping: rdb.Ping},
	}

	// --- Elasticsearch (optional) ---
	var indexer chm.MatchIndexer
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 5, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			// match indexing is best effort; run without it
			log.Warn("elasticsearch unavailable, match indexing disabled", map[string]interface{}{"error": err})
		} else {
			mi := search.NewMatchIndexer(es.Client, cfg.Matching.SearchIndex)
			if err := mi.EnsureIndex(ctx); err != nil {
				log.Warn("could not ensure match index", map[string]interface{}{"index": cfg.Matching.SearchIndex, "error": err})
			}
			indexer = mi
			checks = append(checks, readinessCheck{name: "elasticsearch", ping: es.Ping})
			log.Info("Elasticsearch connected successfully", map[string]interface{}{"index": cfg.Matching.SearchIndex})
		}
	}

	// --- Repositories ---
	referrals := repository.NewReferralRepository(pg.DB)
	homes := repository.NewCachedHomes(
		repository.NewHomeRepository(pg.DB),
		rdb.Client,
		cfg.Matching.HomesCacheKey,
		config.GetDuration(cfg.Matching.HomesCacheTTL),
	)

	// --- Workers ---
	computeCfg := chm.ConfigFrom(cfg)
	statusCfg := urs.ConfigFrom(cfg)
	profileCfg := uhp.ConfigFrom(cfg)
	for name, v := range map[string]interface{ Validate() error }{
		chm.TaskType: computeCfg,
		urs.TaskType: statusCfg,
		uhp.TaskType: profileCfg,
	} {
		if err := v.Validate(); err != nil {
			zapLog.Fatal("invalid worker config", zap.String("taskType", name), zap.Error(err))
		}
	}

	handlers := []struct {
		taskType string
		handle   worker.JobHandler
	}{
		{chm.TaskType, chm.NewHandler(computeCfg, chm.Dependencies{
			Referrals:     referrals,
			Homes:         homes,
			Threads:       repository.NewThreadRepository(pg.DB),
			Events:        repository.NewEventRepository(pg.DB),
			Indexer:       indexer,
			Observability: obs,
		}, log).Handle},
		{urs.TaskType, urs.NewHandler(statusCfg, referrals, obs, log).Handle},
		{uhp.TaskType, uhp.NewHandler(profileCfg, repository.NewHomeRepository(pg.DB), homes, obs, log).Handle},
	}

	var jobWorkers []worker.JobWorker
	for _, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, h.taskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": h.taskType})
			continue
		}
		if err := reg.Require(h.taskType); err != nil {
			zapLog.Fatal("refusing to start unregistered worker", zap.String("taskType", h.taskType), zap.Error(err))
		}
		if jw := camunda.StartWorker(zeebe.Zeebe(), h.taskType, wcfg, h.handle, log); jw != nil {
			jobWorkers = append(jobWorkers, jw)
		}
	}
	log.Info("workers registered", map[string]interface{}{"count": len(jobWorkers)})

	// --- Health & Metrics Server ---
	srv := newServer(cfg.Server.Addr(), checks)
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", map[string]interface{}{"error": err})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err})
	}

	log.Info("Worker manager stopped gracefully", nil)
}
