package config

import (
	"os"
	"strconv"
	"time"
)

// applyEnvOverrides layers DECOYFORGE_* environment variables over the config.
// Environment wins over file values so deployments can keep secrets out of YAML.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("DECOYFORGE_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv("DECOYFORGE_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("DECOYFORGE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("DECOYFORGE_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("DECOYFORGE_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DECOYFORGE_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LLM.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("DECOYFORGE_REALISM_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Generation.RealismThreshold = f
		}
	}
	if v := os.Getenv("DECOYFORGE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.MaxAttempts = n
		}
	}
	if v := os.Getenv("DECOYFORGE_DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("DECOYFORGE_OUTPUT_BASE_PATH"); v != "" {
		c.Populate.OutputBasePath = v
	}
	if v := os.Getenv("DECOYFORGE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}
