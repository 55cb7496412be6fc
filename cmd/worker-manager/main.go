// cmd/worker-manager/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fundingos-workers/internal/common/aws"
	"fundingos-workers/internal/common/camunda"
	"fundingos-workers/internal/common/config"
	"fundingos-workers/internal/common/database"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/observability"
	"fundingos-workers/internal/common/validation"
	"fundingos-workers/internal/fitscore"
	"fundingos-workers/internal/intent"
	"fundingos-workers/internal/store"
	"fundingos-workers/pkg/registry"

	cd "fundingos-workers/internal/workers/ai-conversation/check-deadlines"
	ci "fundingos-workers/internal/workers/ai-conversation/classify-intent"
	cfs "fundingos-workers/internal/workers/funding/calculate-fit-score"
	ro "fundingos-workers/internal/workers/funding/rank-opportunities"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		TracingEnabled: cfg.Observability.TracingEnabled,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
		Registerer:     prometheus.DefaultRegisterer,
	})
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	}, zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var db *sql.DB
	err = retryWithBackoff(func() error {
		var err error
		db, err = database.OpenPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer db.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *elasticsearch.Client
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.OpenElasticsearch(ctx, cfg.Database.Elasticsearch)
		return err
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var rdb *redis.Client
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.OpenRedis(ctx, cfg.Database.Redis)
		return err
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	pg := store.NewPostgres(db)
	records := store.NewCachedRecords(pg, rdb,
		config.GetDuration(cfg.Database.Redis.CacheTTL), cfg.Database.Redis.KeyPrefix, log)
	search := store.NewSearch(esClient, cfg.Database.Elasticsearch.OpportunityIndex)

	// --- Domain services ---
	scorer := fitscore.New(cfg.Scoring)
	classifier, err := intent.New(intentConfig(cfg.Intent))
	if err != nil {
		zapLog.Fatal("intent classifier setup failed", zap.Error(err))
	}

	var validator *validation.Validator
	if cfg.Registry.ValidateInput {
		reg, err := registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}
		if validator, err = validation.NewValidator(reg); err != nil {
			zapLog.Fatal("input schema compile failed", zap.Error(err))
		}
		zapLog.Info("Input validation enabled", zap.String("registry", cfg.Registry.Path))
	}

	var publisher cd.AlertPublisher
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns client setup failed", zap.Error(err))
		}
		publisher = sns
	}

	// --- Workers ---
	var workers []worker.JobWorker
	register := func(taskType string, handler worker.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if w := camunda.Register(zeebe.GetClient(), taskType, wcfg, handler, obs, zapLog); w != nil {
			workers = append(workers, w)
		}
	}

	{
		c := cfs.LoadConfig()
		c.Timeout = handlerTimeout(cfg, cfs.TaskType, c.Timeout)
		h := cfs.NewHandler(c, scorer, records, inputValidator(validator), log)
		register(cfs.TaskType, h.Handle)
	}
	{
		c := ro.LoadConfig()
		c.Timeout = handlerTimeout(cfg, ro.TaskType, c.Timeout)
		h := ro.NewHandler(c, scorer, records, search, inputValidator(validator), log)
		register(ro.TaskType, h.Handle)
	}
	{
		c := ci.LoadConfig()
		c.HistoryLimit = cfg.Intent.HistoryLimit
		c.Timeout = handlerTimeout(cfg, ci.TaskType, c.Timeout)
		h := ci.NewHandler(c, classifier, pg, inputValidator(validator), log)
		register(ci.TaskType, h.Handle)
	}
	{
		c := cd.LoadConfig()
		c.WithinDays = cfg.Deadlines.WithinDays
		c.Limit = cfg.Deadlines.Limit
		c.UrgentDays = cfg.Deadlines.UrgentDays
		c.Timeout = handlerTimeout(cfg, cd.TaskType, c.Timeout)
		h := cd.NewHandler(c, pg, publisher, inputValidator(validator), log)
		register(cd.TaskType, h.Handle)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	health := &database.Health{DB: db, Redis: rdb, ES: esClient}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failing := database.Failing(health.Check(checkCtx))
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			failing = append(failing, "zeebe")
		}
		if len(failing) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "not_ready",
				"failing": failing,
				"time":    time.Now().Format(time.RFC3339),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	camunda.Close(workers...)
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// intentConfig overlays the configured tuning on the built-in classifier tables.
func intentConfig(ic config.IntentConfig) intent.Config {
	c := intent.DefaultConfig()
	if ic.MaxFollowUpLength > 0 {
		c.MaxFollowUpLength = ic.MaxFollowUpLength
	}
	if ic.RecencyWindow > 0 {
		c.RecencyWindow = config.GetDuration(ic.RecencyWindow)
	}
	if ic.MaxClockSkew > 0 {
		c.MaxClockSkew = config.GetDuration(ic.MaxClockSkew)
	}
	if len(ic.ContextRules) > 0 {
		c.ContextRules = ic.ContextRules
	}
	if len(ic.DirectRules) > 0 {
		c.DirectRules = ic.DirectRules
	}
	c = c.WithPhrases(intent.Affirmative, ic.ExtraPhrases.Affirmative...)
	c = c.WithPhrases(intent.Negative, ic.ExtraPhrases.Negative...)
	c = c.WithPhrases(intent.Continuation, ic.ExtraPhrases.Continuation...)
	return c.WithPhrases(intent.Expansion, ic.ExtraPhrases.Expansion...)
}

// handlerTimeout keeps the per-job deadline inside the worker's activation timeout.
func handlerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	wcfg, ok := cfg.Workers[taskType]
	if !ok || wcfg.Timeout <= 0 {
		return fallback
	}
	if d := config.GetDuration(wcfg.Timeout); d < fallback {
		return d
	}
	return fallback
}

// inputValidator avoids handing handlers a typed nil when validation is off.
func inputValidator(v *validation.Validator) interface {
	Validate(taskType string, variables map[string]interface{}) error
} {
	if v == nil {
		return nil
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
