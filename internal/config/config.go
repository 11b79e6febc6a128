package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey          string
	GeminiModel           string
	GeminiMaxRetries      int
	GeminiRetryDelay      time.Duration
	GeminiTimeout         time.Duration
	GeminiMaxOutputTokens int
	DatabaseURL           string
	HTTPPort              string
	LogLevel              string
	LogMode               string
	JWTSecret             string

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// MockOnly reports whether the service runs without an upstream credential.
func (c Config) MockOnly() bool {
	return c.GeminiAPIKey == ""
}

func Load() (Config, error) {
	err := godotenv.Load() // Load .env file if it exists

	cfg := Config{
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),
		GeminiMaxRetries:      getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		GeminiRetryDelay:      getEnvAsDuration("GEMINI_RETRY_DELAY", time.Second),
		GeminiTimeout:         getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
		GeminiMaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 2048),
		DatabaseURL:           getEnv("DATABASE_URL", "career_assistant.db"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		LogMode:               getEnv("LOG_MODE", "development"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		EnvFileLoaded:         err == nil,
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.GeminiMaxRetries < 1 {
		cfg.GeminiMaxRetries = 1
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("1500ms") or a bare number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
