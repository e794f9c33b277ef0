package llm

import (
	"context"
	"fmt"

	"decoyforge/internal/config"
	"decoyforge/internal/logging"
)

// New builds the configured provider client wrapped with the retry and
// rate-limit layer.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var inner Client
	switch cfg.Provider {
	case "openai":
		inner = NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Std(),
		})
	case "ollama":
		inner = NewOllamaClient(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Std(),
		})
	case "gemini":
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		inner = client
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}

	logging.Provider("client initialized: provider=%s model=%s retries=%d", cfg.Provider, cfg.Model, cfg.MaxRetries)

	return NewRetrier(inner, RetryPolicy{
		MaxRetries:     cfg.MaxRetries,
		BackoffBase:    cfg.RetryBackoffBase.Std(),
		BackoffMax:     cfg.RetryBackoffMax.Std(),
		RequestsPerSec: cfg.RequestsPerSec,
		Burst:          cfg.Burst,
	}), nil
}
