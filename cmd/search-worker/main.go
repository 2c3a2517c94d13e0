// cmd/search-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/camunda"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/config"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/database"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/logger"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/common/observability"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/ambiguity"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/query"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/refinement"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/resultcache"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/session"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/search/vocabulary"
	"github.com/kleentekllc-cyber/chatgpt-mcp-app/pkg/registry"

	es "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/workers/search/end-session"
	pq "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/workers/search/parse-query"
	rr "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/workers/search/refine-results"
	ss "github.com/kleentekllc-cyber/chatgpt-mcp-app/internal/workers/search/start-session"
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
				"error":       err.Error(),
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting search worker...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel meter unavailable, continuing with prometheus only", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Search core ---
	vocab := vocabulary.Default()
	sessions := session.NewStore(cfg.Search.SessionTimeoutDuration(), log)
	locations := session.NewLocationStore(cfg.Search.SessionTimeoutDuration())
	cache := resultcache.New(redis.Client, cfg.Search.CacheTTLDuration(), log)

	parser := query.NewParser(vocab, locations, query.Config{
		MaxQueryLength: cfg.Search.MaxQueryLength,
		Retry: query.RetryConfig{
			MaxRetries: cfg.Search.Retry.MaxRetries,
			BaseDelay:  config.GetDuration(cfg.Search.Retry.BaseDelay),
			MaxDelay:   config.GetDuration(cfg.Search.Retry.MaxDelay),
		},
	}, log)
	detector := ambiguity.NewDetector(vocab, cfg.Search.ConfidenceThreshold)
	refiner := refinement.NewParser(vocab)

	sweeper := session.NewSweeper(sessions, locations, cfg.Search.SweepIntervalDuration(), log)
	go sweeper.Run(ctx)

	// --- Register workers ---
	activities, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry unreadable", zap.Error(err))
	}
	workers := camunda.NewRegistry(zeebe.GetClient(), log)

	pqCfg := workerConfig(cfg, activities, pq.TaskType, log)
	workers.Start(pq.TaskType, pqCfg,
		pq.NewHandler(pq.LoadConfig(pqCfg), parser, detector, obs, log).Handle)

	ssCfg := workerConfig(cfg, activities, ss.TaskType, log)
	workers.Start(ss.TaskType, ssCfg,
		ss.NewHandler(ss.LoadConfig(ssCfg), sessions, cache, obs, log).Handle)

	rrCfg := workerConfig(cfg, activities, rr.TaskType, log)
	workers.Start(rr.TaskType, rrCfg,
		rr.NewHandler(rr.LoadConfig(rrCfg), sessions, refiner, obs, log).Handle)

	esCfg := workerConfig(cfg, activities, es.TaskType, log)
	workers.Start(es.TaskType, esCfg,
		es.NewHandler(es.LoadConfig(esCfg), sessions, locations, obs, log).Handle)

	zapLog.Info("Search workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Health/Metrics server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		checks := map[string]interface{}{}

		if err := redis.Ping(r.Context()); err != nil {
			status, code = "not ready", http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = redis.PoolStats()
		}
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "not ready", http.StatusServiceUnavailable
			checks["zeebe"] = err.Error()
		} else {
			checks["zeebe"] = "ok"
		}

		writeJSON(w, code, map[string]interface{}{
			"status":   status,
			"sessions": sessions.Stats(),
			"workers":  workers.TaskTypes(),
			"checks":   checks,
			"time":     time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Search worker stopped gracefully")
}

// workerConfig prefers the configured settings for taskType and otherwise
// takes the timeout and retries declared in the activity registry.
func workerConfig(cfg *config.Config, activities *registry.ActivityRegistry, taskType string, log logger.Logger) config.WorkerConfig {
	if wcfg, ok := cfg.Workers[taskType]; ok {
		return wcfg
	}

	wcfg := config.GetWorkerConfig(cfg, taskType)
	activity, ok := activities.Find(taskType)
	if !ok {
		log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": taskType})
		return wcfg
	}
	wcfg.Timeout = int(activity.TimeoutDuration(config.GetDuration(wcfg.Timeout)).Milliseconds())
	wcfg.MaxRetries = activity.Retries
	return wcfg
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
