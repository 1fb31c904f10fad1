package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/upb/governance-engine/models"
)

// Config represents the complete engine configuration
type Config struct {
	Engine        EngineConfig
	Embedding     EmbeddingConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
	Environment   string
}

// EngineConfig holds synthesis orchestrator configuration
type EngineConfig struct {
	RetrievalThreshold  float64
	ConfidenceThreshold float64
	TopK                int
	DraftTimeout        time.Duration
	ComplianceHash      string
}

// EmbeddingConfig holds embedding backend configuration.
// Provider is "hash" (deterministic, offline) or "openai".
type EmbeddingConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
	CacheSize  int
}

// AuditConfig holds the async audit trail configuration
type AuditConfig struct {
	Enabled     bool
	BufferSize  int
	WorkerCount int
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Engine: EngineConfig{
			RetrievalThreshold:  getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.5),
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.7),
			TopK:                getEnvAsInt("TOP_K", 3),
			DraftTimeout:        getEnvAsDuration("DRAFT_TIMEOUT", 10*time.Second),
			ComplianceHash:      getEnv("COMPLIANCE_HASH", models.DefaultComplianceHash),
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "hash"),
			Model:      getEnv("EMBEDDING_MODEL", ""),
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			// 0 means "backend default": 256 for hash, 1536 for openai.
			Dimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 0),
			CacheSize:  getEnvAsInt("EMBEDDING_CACHE_SIZE", 10000),
		},
		Audit: AuditConfig{
			Enabled:     getEnvAsBool("AUDIT_ENABLED", true),
			BufferSize:  getEnvAsInt("AUDIT_BUFFER_SIZE", 1024),
			WorkerCount: getEnvAsInt("AUDIT_WORKER_COUNT", 2),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Engine.RetrievalThreshold <= 0 || c.Engine.RetrievalThreshold > 1 {
		return fmt.Errorf("retrieval threshold must be in (0,1], got %.2f", c.Engine.RetrievalThreshold)
	}
	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %.2f", c.Engine.ConfidenceThreshold)
	}
	if c.Engine.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Engine.TopK)
	}
	if c.Engine.ComplianceHash == "" {
		return fmt.Errorf("compliance hash is required")
	}

	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	switch c.Embedding.Provider {
	case "hash":
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("openai embedding provider requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
