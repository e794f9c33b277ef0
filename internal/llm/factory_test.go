package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoyforge/internal/config"
)

func TestNewOpenAIProvider(t *testing.T) {
	client, err := New(context.Background(), config.LLMConfig{
		Provider: "openai",
		APIKey:   "k",
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestNewOllamaProvider(t *testing.T) {
	client, err := New(context.Background(), config.LLMConfig{
		Provider: "ollama",
		Model:    "llama3.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ollama", client.Name())
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "gemini"})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
