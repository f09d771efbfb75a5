// ABOUTME: Centralized configuration for the engram memory engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the memory engine
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Semantic search settings
	VectorDimension int
	SearchThreshold float64

	// Summary ladder settings
	SummaryBaseThreshold      int
	SummaryRecursiveThreshold int
	SummaryMaxLevel           int
	SummaryRecentCount        int

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:                    os.Getenv("ENGRAM_DB_PATH"),
		OpenAIKey:                 os.Getenv("OPENAI_API_KEY"),
		ChatModel:                 getEnv("ENGRAM_OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:            getEnv("ENGRAM_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:                   getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:                getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:                getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:           getEnvInt("VECTOR_DIMENSION", 768),
		SearchThreshold:           getEnvFloat("SEARCH_THRESHOLD", 0.5),
		SummaryBaseThreshold:      getEnvInt("SUMMARY_BASE_THRESHOLD", 20),
		SummaryRecursiveThreshold: getEnvInt("SUMMARY_RECURSIVE_THRESHOLD", 10),
		SummaryMaxLevel:           getEnvInt("SUMMARY_MAX_LEVEL", 3),
		SummaryRecentCount:        getEnvInt("SUMMARY_RECENT_COUNT", 3),
		CharmHost:                 getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:               getEnv("CHARM_DB", "engram"),
		AutoSync:                  getEnvBool("CHARM_AUTO_SYNC", true),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SearchThreshold < -1 || c.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be -1..1, got %f", c.SearchThreshold)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.SummaryRecursiveThreshold < 2 {
		return fmt.Errorf("SUMMARY_RECURSIVE_THRESHOLD must be at least 2, got %d", c.SummaryRecursiveThreshold)
	}
	if c.SummaryMaxLevel < 1 {
		return fmt.Errorf("SUMMARY_MAX_LEVEL must be at least 1, got %d", c.SummaryMaxLevel)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
