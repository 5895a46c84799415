package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// LLMConfig holds generative-model configuration
type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// PipelineConfig holds extraction-pipeline behavior flags
type PipelineConfig struct {
	// CheckEvidence flags results whose source_evidence is not a substring
	// of the originating document.
	CheckEvidence bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./intelhub.db"),
		},
		LLM: LLMConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			BaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:      getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
			MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		},
		Pipeline: PipelineConfig{
			CheckEvidence: getEnvAsBool("CHECK_EVIDENCE", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. A missing credential is fatal
// at startup, never a per-request condition.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ConfigurationError("GEMINI_API_KEY is required")
	}
	if c.Server.HTTPAddr == "" {
		return ConfigurationError("HTTP_ADDR is required")
	}
	if c.Database.Path == "" {
		return ConfigurationError("DB_PATH is required")
	}
	return nil
}
