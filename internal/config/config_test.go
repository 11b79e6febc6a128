package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.MockOnly() {
		t.Error("expected mock-only mode without an API key")
	}
	if cfg.GeminiMaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.GeminiMaxRetries)
	}
	if cfg.GeminiRetryDelay != time.Second {
		t.Errorf("expected 1s retry delay, got %v", cfg.GeminiRetryDelay)
	}
	if cfg.GeminiTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.GeminiTimeout)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.HTTPPort)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"1500", 1500 * time.Millisecond},
		{"garbage", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		if got := getEnvAsDuration("TEST_DURATION", 5*time.Second); got != tt.want {
			t.Errorf("getEnvAsDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLoadClampsRetries(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_MAX_RETRIES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GeminiMaxRetries != 1 {
		t.Errorf("expected retries clamped to 1, got %d", cfg.GeminiMaxRetries)
	}
}
