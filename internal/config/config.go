package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string

	// xAI / Grok configuration
	XAIAPIKey    string
	XAIBaseURL   string
	DefaultModel string
	GrokTimeout  time.Duration

	// CORS configuration
	AllowedOrigins string

	// Dashboard cache TTL
	DashboardCacheTTL time.Duration

	// Stale-lead requalification job
	RequalifyEnabled  bool
	RequalifyInterval time.Duration
	RequalifyMaxAge   time.Duration

	// Evaluation defaults
	EvaluationDataset string
	EvaluationModels  []string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	// Parse evaluation model list (comma-separated)
	modelsEnv := getEnv("EVALUATION_MODELS", "grok-beta")
	var evalModels []string
	for _, m := range strings.Split(modelsEnv, ",") {
		if m = strings.TrimSpace(m); m != "" {
			evalModels = append(evalModels, m)
		}
	}

	return &Config{
		Port:     getEnv("PORT", "3001"),
		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017/leadflow"),

		XAIAPIKey:    getEnv("XAI_API_KEY", ""),
		XAIBaseURL:   getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),
		DefaultModel: getEnv("GROK_MODEL", "grok-beta"),
		GrokTimeout:  getDurationEnv("GROK_TIMEOUT", 60*time.Second),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		DashboardCacheTTL: getDurationEnv("DASHBOARD_CACHE_TTL", 60*time.Second),

		RequalifyEnabled:  getBoolEnv("REQUALIFY_ENABLED", true),
		RequalifyInterval: getDurationEnv("REQUALIFY_INTERVAL", 24*time.Hour),
		RequalifyMaxAge:   getDurationEnv("REQUALIFY_MAX_AGE", 24*time.Hour),

		EvaluationDataset: getEnv("EVALUATION_DATASET", "testdata/evaluation_dataset.json"),
		EvaluationModels:  evalModels,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
