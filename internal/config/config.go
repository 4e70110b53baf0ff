// Package config loads the server's environment-variable configuration
// once at startup. Every tunable has a default; unset backends (Postgres,
// Redis, ClickHouse, embedding models) leave their DSN empty and the
// server falls back to its in-process adapters.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment key the server reads.
type Config struct {
	HTTPPort string
	LogLevel string

	// Core budgets.
	DeadlineMS     int
	MaxPromptBytes int
	MaxBatchSize   int

	// Cache sizing.
	CacheL1Size int
	CacheTTLL1  time.Duration
	CacheTTLL2  time.Duration

	// Detection tuning.
	SemanticThreshold float64

	// Pattern / policy sources.
	PatternsFile string
	PoliciesFile string
	PostgresDSN  string

	// Backends.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ClickHouseDSN string

	// Embedding backends. ONNX takes precedence when both are configured.
	ONNXModelPath         string
	ONNXSharedLibrary     string
	AWSRegion             string
	BedrockEmbeddingModel string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	EmbeddingDimension    int

	// Vector reference refresh cadence.
	IndexRefreshInterval time.Duration
}

// Load reads the full configuration from the environment.
func Load() Config {
	return Config{
		HTTPPort: envOrDefault("HTTP_PORT", "8080"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		DeadlineMS:     envOrDefaultInt("DEADLINE_MS", 150),
		MaxPromptBytes: envOrDefaultInt("MAX_PROMPT_BYTES", 64*1024),
		MaxBatchSize:   envOrDefaultInt("MAX_BATCH_SIZE", 100),

		CacheL1Size: envOrDefaultInt("CACHE_L1_SIZE", 1000),
		CacheTTLL1:  time.Duration(envOrDefaultInt("CACHE_TTL_L1", 300)) * time.Second,
		CacheTTLL2:  time.Duration(envOrDefaultInt("CACHE_TTL_L2", 3600)) * time.Second,

		SemanticThreshold: envOrDefaultFloat("SEMANTIC_THRESHOLD", 0.85),

		PatternsFile: envOrDefault("PATTERNS_FILE", "patterns.yaml"),
		PoliciesFile: envOrDefault("POLICIES_FILE", "policies.yaml"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envOrDefaultInt("REDIS_DB", 0),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		ONNXModelPath:         os.Getenv("ONNX_MODEL_PATH"),
		ONNXSharedLibrary:     os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"),
		AWSRegion:             os.Getenv("AWS_REGION"),
		BedrockEmbeddingModel: os.Getenv("BEDROCK_EMBEDDING_MODEL"),
		AWSAccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		EmbeddingDimension:    envOrDefaultInt("EMBEDDING_DIMENSION", 384),

		IndexRefreshInterval: time.Duration(envOrDefaultInt("INDEX_REFRESH_INTERVAL_S", 60)) * time.Second,
	}
}

// Deadline returns DeadlineMS as a duration.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineMS) * time.Millisecond
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
