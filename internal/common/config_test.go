package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "DB_PATH", "GEMINI_API_KEY", "GEMINI_BASE_URL",
		"GEMINI_MODEL", "GEMINI_TIMEOUT", "GEMINI_MAX_RETRIES", "CHECK_EVIDENCE",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "./intelhub.db", cfg.Database.Path)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.LLM.BaseURL)
	assert.Equal(t, "gemini-3-flash-preview", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.True(t, cfg.Pipeline.CheckEvidence)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_TIMEOUT", "10s")
	t.Setenv("GEMINI_MAX_RETRIES", "1")
	t.Setenv("CHECK_EVIDENCE", "false")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.False(t, cfg.Pipeline.CheckEvidence)
}

func TestLoadConfigIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("GEMINI_TIMEOUT", "soon")
	t.Setenv("GEMINI_MAX_RETRIES", "many")
	t.Setenv("CHECK_EVIDENCE", "yep")

	cfg := LoadConfig()

	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.True(t, cfg.Pipeline.CheckEvidence)
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{
		Server:   ServerConfig{HTTPAddr: ":8080"},
		Database: DatabaseConfig{Path: "./intelhub.db"},
		LLM:      LLMConfig{APIKey: "key"},
	}
	require.NoError(t, valid.Validate())

	missingKey := *valid
	missingKey.LLM.APIKey = ""
	err := missingKey.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	missingAddr := *valid
	missingAddr.Server.HTTPAddr = ""
	assert.ErrorIs(t, missingAddr.Validate(), ErrConfiguration)

	missingDB := *valid
	missingDB.Database.Path = ""
	assert.ErrorIs(t, missingDB.Validate(), ErrConfiguration)
}
