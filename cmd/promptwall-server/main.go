package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sentrygate/promptwall/internal/cache"
	"github.com/sentrygate/promptwall/internal/config"
	"github.com/sentrygate/promptwall/internal/detectors"
	"github.com/sentrygate/promptwall/internal/embed"
	"github.com/sentrygate/promptwall/internal/httpapi"
	"github.com/sentrygate/promptwall/internal/pattern"
	"github.com/sentrygate/promptwall/internal/pipeline"
	"github.com/sentrygate/promptwall/internal/policy"
	"github.com/sentrygate/promptwall/internal/storage"
	"github.com/sentrygate/promptwall/internal/store"
	"github.com/sentrygate/promptwall/internal/vectorindex"
)

func main() {
	cfg := config.Load()

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("starting promptwall server",
		zap.String("http_port", cfg.HTTPPort),
		zap.Int("deadline_ms", cfg.DeadlineMS),
		zap.Int("max_prompt_bytes", cfg.MaxPromptBytes),
		zap.Int("cache_l1_size", cfg.CacheL1Size),
		zap.Float64("semantic_threshold", cfg.SemanticThreshold),
	)

	// Patterns — YAML file with embedded-catalog fallback
	patterns, err := pattern.NewFileProvider(cfg.PatternsFile)
	if err != nil {
		logger.Fatal("failed to load pattern set", zap.Error(err))
	}

	// Policies — Postgres when configured, YAML file otherwise
	var policies policy.Provider
	if cfg.PostgresDSN != "" {
		pgPolicies, err := policy.NewPostgresProvider(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("failed to load policies from postgres", zap.Error(err))
		}
		defer func() { _ = pgPolicies.Close() }()
		policies = pgPolicies
		logger.Info("policies loaded from postgres")
	} else {
		filePolicies, err := policy.NewFileProvider(cfg.PoliciesFile)
		if err != nil {
			logger.Fatal("failed to load policy file", zap.Error(err))
		}
		policies = filePolicies
		logger.Info("policies loaded from file", zap.String("path", cfg.PoliciesFile))
	}

	// Detectors — regex always; semantic only when an embedding backend and
	// the Redis reference store are configured.
	dets := []detectors.Detector{detectors.NewRegexDetector(patterns)}

	var refStore *vectorindex.RedisStore
	if cfg.RedisAddr != "" {
		refStore = vectorindex.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err := refStore.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, disabling shared cache tier and semantic references", zap.Error(err))
			_ = refStore.Close()
			refStore = nil
		} else {
			defer func() { _ = refStore.Close() }()
		}
	}

	embedder := buildEmbedder(cfg, logger)
	if embedder != nil && refStore != nil {
		index := vectorindex.NewMemoryIndex()
		refreshIndex(refStore, index, logger)
		go refreshLoop(refStore, index, cfg.IndexRefreshInterval, logger)

		dets = append(dets, detectors.NewSemanticDetector(embedder, index))
		logger.Info("semantic detector enabled", zap.Int("references", index.Size()))
	} else {
		logger.Info("semantic detector disabled",
			zap.Bool("embedder_configured", embedder != nil),
			zap.Bool("redis_configured", refStore != nil),
		)
	}

	// Result cache — L1 always, Redis L2 when available
	var shared cache.Shared
	if refStore != nil {
		shared = cache.NewRedisShared(refStore.Client(), cfg.CacheTTLL2)
	}
	resultCache := cache.NewTiered(cache.NewL1(cfg.CacheL1Size, cfg.CacheTTLL1), shared, cfg.CacheTTLL2, logger)

	// Sink — ClickHouse or LogSink fallback
	var sink storage.DetectionSink
	if cfg.ClickHouseDSN != "" {
		chSink, err := storage.NewClickHouseSink(cfg.ClickHouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log sink", zap.Error(err))
			sink = storage.NewLogSink(logger)
		} else {
			sink = chSink
			logger.Info("clickhouse sink connected")
		}
	} else {
		sink = storage.NewLogSink(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log sink")
	}
	defer sink.Close()

	pipe := pipeline.New(policies, policy.NewEngine(), dets, resultCache, sink, pipeline.Config{
		Deadline:       cfg.Deadline(),
		MaxPromptBytes: cfg.MaxPromptBytes,
	}, logger)

	// Postgres pool for the policy CRUD API (separate from the provider's
	// read path)
	var pgStore *store.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		pgStore = store.NewStore(db)
		logger.Info("postgres connected, policy CRUD API enabled")
	}

	deps := &httpapi.Dependencies{
		Pipeline:     pipe,
		Patterns:     patterns,
		Policies:     policies,
		Store:        pgStore,
		Logger:       logger,
		MaxBatchSize: cfg.MaxBatchSize,
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("promptwall server stopped")
}

// buildEmbedder picks the embedding backend: local ONNX when a model path
// is configured, AWS Bedrock otherwise, nil when neither is.
func buildEmbedder(cfg config.Config, logger *zap.Logger) embed.Embedder {
	if cfg.ONNXModelPath != "" {
		e, err := embed.NewONNXEmbedder(cfg.ONNXModelPath, cfg.ONNXSharedLibrary, 0, cfg.EmbeddingDimension, logger)
		if err != nil {
			logger.Error("failed to load onnx embedder, skipping", zap.Error(err))
			return nil
		}
		logger.Info("onnx embedder loaded", zap.String("model_dir", cfg.ONNXModelPath))
		return e
	}
	if cfg.BedrockEmbeddingModel != "" && cfg.AWSRegion != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e, err := embed.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.BedrockEmbeddingModel,
			cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.EmbeddingDimension, logger)
		if err != nil {
			logger.Error("failed to create bedrock embedder, skipping", zap.Error(err))
			return nil
		}
		logger.Info("bedrock embedder enabled", zap.String("model", cfg.BedrockEmbeddingModel))
		return e
	}
	return nil
}

// refreshIndex replaces the in-memory reference set from Redis.
func refreshIndex(refStore *vectorindex.RedisStore, index *vectorindex.MemoryIndex, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	refs, err := refStore.LoadAll(ctx)
	if err != nil {
		logger.Warn("vector reference load failed, keeping current index", zap.Error(err))
		return
	}
	index.Load(refs)
}

// refreshLoop polls Redis so reference edits show up without a restart.
func refreshLoop(refStore *vectorindex.RedisStore, index *vectorindex.MemoryIndex, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		refreshIndex(refStore, index, logger)
	}
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
