package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.DeadlineMS != 150 || cfg.Deadline() != 150*time.Millisecond {
		t.Errorf("Deadline = %v", cfg.Deadline())
	}
	if cfg.MaxPromptBytes != 64*1024 {
		t.Errorf("MaxPromptBytes = %d", cfg.MaxPromptBytes)
	}
	if cfg.MaxBatchSize != 100 {
		t.Errorf("MaxBatchSize = %d", cfg.MaxBatchSize)
	}
	if cfg.CacheL1Size != 1000 || cfg.CacheTTLL1 != 300*time.Second || cfg.CacheTTLL2 != 3600*time.Second {
		t.Errorf("cache defaults wrong: %d %v %v", cfg.CacheL1Size, cfg.CacheTTLL1, cfg.CacheTTLL2)
	}
	if cfg.SemanticThreshold != 0.85 {
		t.Errorf("SemanticThreshold = %f", cfg.SemanticThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEADLINE_MS", "50")
	t.Setenv("CACHE_L1_SIZE", "10")
	t.Setenv("SEMANTIC_THRESHOLD", "0.9")
	t.Setenv("HTTP_PORT", "9999")

	cfg := Load()
	if cfg.Deadline() != 50*time.Millisecond {
		t.Errorf("Deadline = %v", cfg.Deadline())
	}
	if cfg.CacheL1Size != 10 {
		t.Errorf("CacheL1Size = %d", cfg.CacheL1Size)
	}
	if cfg.SemanticThreshold != 0.9 {
		t.Errorf("SemanticThreshold = %f", cfg.SemanticThreshold)
	}
	if cfg.HTTPPort != "9999" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DEADLINE_MS", "not-a-number")
	t.Setenv("SEMANTIC_THRESHOLD", "high")

	cfg := Load()
	if cfg.DeadlineMS != 150 {
		t.Errorf("malformed DEADLINE_MS should keep default, got %d", cfg.DeadlineMS)
	}
	if cfg.SemanticThreshold != 0.85 {
		t.Errorf("malformed SEMANTIC_THRESHOLD should keep default, got %f", cfg.SemanticThreshold)
	}
}
