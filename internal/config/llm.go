package config

// LLMConfig configures the text-generation provider adapter.
type LLMConfig struct {
	// Provider selects the client: openai, ollama, gemini
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`

	// Per-request timeout
	Timeout Duration `yaml:"timeout"`

	// Retry policy for transient failures (timeouts, 5xx, rate limits).
	// Non-transient failures (auth, malformed request) are never retried.
	MaxRetries       int      `yaml:"max_retries"`
	RetryBackoffBase Duration `yaml:"retry_backoff_base"`
	RetryBackoffMax  Duration `yaml:"retry_backoff_max"`

	// Client-side rate limit to respect provider quotas.
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}
