package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.7, cfg.Generation.RealismThreshold)
	assert.Equal(t, 3, cfg.Generation.MaxAttempts)
	assert.Equal(t, Duration(time.Second), cfg.LLM.RetryBackoffBase)
	assert.Equal(t, Duration(30*time.Second), cfg.LLM.RetryBackoffMax)
	assert.Equal(t, uint32(0o600), cfg.Populate.Permissions.Mode("private-key"))
	assert.Equal(t, uint32(0o755), cfg.Populate.Permissions.Mode("script"))
	assert.Equal(t, uint32(0o644), cfg.Populate.Permissions.Mode("unknown-class"))
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "decoyforge", cfg.Name)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: ollama
  model: llama3
  base_url: http://localhost:11434
  timeout: 45s
generation:
  realism_threshold: 0.8
  max_attempts: 5
populate:
  max_concurrent: 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, Duration(45*time.Second), cfg.LLM.Timeout)
	assert.Equal(t, 0.8, cfg.Generation.RealismThreshold)
	assert.Equal(t, 5, cfg.Generation.MaxAttempts)
	assert.Equal(t, 8, cfg.Populate.MaxConcurrent)
	// Untouched fields keep defaults
	assert.Equal(t, 4096, cfg.Generation.MaxTokens)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DECOYFORGE_LLM_PROVIDER", "gemini")
	t.Setenv("DECOYFORGE_API_KEY", "test-key")
	t.Setenv("DECOYFORGE_REALISM_THRESHOLD", "0.9")
	t.Setenv("DECOYFORGE_MAX_ATTEMPTS", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, 0.9, cfg.Generation.RealismThreshold)
	assert.Equal(t, 2, cfg.Generation.MaxAttempts)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.Generation.MaxAttempts = 0 }},
		{"threshold above 1", func(c *Config) { c.Generation.RealismThreshold = 1.5 }},
		{"zero concurrency", func(c *Config) { c.Populate.MaxConcurrent = 0 }},
		{"inverted window", func(c *Config) {
			c.Populate.TimestampWindow.MinAge = Duration(200 * 24 * time.Hour)
		}},
		{"backoff max below base", func(c *Config) {
			c.LLM.RetryBackoffMax = c.LLM.RetryBackoffBase / 2
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
