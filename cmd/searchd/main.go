// cmd/searchd/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"omnisearch/internal/assistant"
	"omnisearch/internal/common/cache"
	"omnisearch/internal/common/config"
	commonhttp "omnisearch/internal/common/http"
	"omnisearch/internal/common/logger"
	"omnisearch/internal/common/observability"
	"omnisearch/internal/fanout"
	"omnisearch/internal/sources"
	"omnisearch/internal/synthesis"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting searchd...",
		zap.String("environment", cfg.App.Environment),
		zap.Int("sources", len(cfg.Search.SourcesEnabled)),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Source clients ---
	ids, err := sources.ParseIDs(strings.Join(cfg.Search.SourcesEnabled, ","))
	if err != nil {
		zapLog.Fatal("invalid sources_enabled", zap.Error(err))
	}

	hc := commonhttp.NewClient(cfg.Search.Timeout(), cfg.Search.UserAgent)
	clients, err := sources.BuildClients(ids, hc, cfg.Search.MaxResults)
	if err != nil {
		zapLog.Fatal("source registry failed", zap.Error(err))
	}

	// --- Optional Redis response cache with retry ---
	var redisClient *cache.RedisClient
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = cache.NewRedis(cache.Config{
				Address:  cfg.Cache.Address,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
			})
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		ttl := time.Duration(cfg.Cache.TTL) * time.Second
		for i, client := range clients {
			clients[i] = sources.NewCachedClient(client, redisClient, ttl, log)
		}
	}

	coordinator := fanout.New(clients, fanout.Config{
		PerSourceTimeout: cfg.Search.Timeout(),
		MaxParallel:      cfg.Search.MaxParallel,
	}, log)

	// --- Synthesis pipeline ---
	var priority []sources.SourceID
	if len(cfg.Synthesis.Priority) > 0 {
		priority, err = sources.ParseIDs(strings.Join(cfg.Synthesis.Priority, ","))
		if err != nil {
			zapLog.Fatal("invalid synthesis.priority", zap.Error(err))
		}
	}
	builder := synthesis.NewBuilder(priority)

	personasPath := cfg.Synthesis.PersonasPath
	if personasPath == "" {
		personasPath = "configs/personas.json"
	}
	personas, err := synthesis.LoadPersonas(personasPath)
	if err != nil {
		zapLog.Fatal("personas load failed", zap.Error(err))
	}

	model := synthesis.NewHTTPModel(cfg.Synthesis.ModelBaseURL, cfg.Synthesis.LoadTimeoutDuration())
	engine := synthesis.NewEngine(model, cfg.Synthesis.ContextWindow, log)
	defer engine.Close()

	err = retryWithBackoff(func() error {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Synthesis.LoadTimeoutDuration())
		defer cancel()
		return engine.Load(loadCtx)
	}, 10, 2*time.Second, zapLog, "Model load")

	if err != nil {
		// Queries still serve raw aggregates; synthesis reports ModelNotReady.
		zapLog.Error("model load failed, continuing without synthesis", zap.Error(err))
	} else {
		zapLog.Info("Model loaded successfully")
	}

	service := assistant.NewService(coordinator, builder, engine, personas, assistant.Defaults{
		ContextBudget: cfg.Synthesis.ContextBudget,
		Temperature:   cfg.Synthesis.Temperature,
		MaxTokens:     cfg.Synthesis.MaxTokens,
	}, obs, log)

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req assistant.RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}
		if req.Persona == "" {
			req.Persona = cfg.Synthesis.Persona
		}

		result, err := service.RunQuery(r.Context(), req)
		if err != nil {
			log.WithError(err).Error("Query failed", nil)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "ready"
		code := http.StatusOK
		if engine.State() != synthesis.StateReady && engine.State() != synthesis.StateBusy {
			status = "degraded: model " + engine.State().String()
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("searchd stopped gracefully")
}
