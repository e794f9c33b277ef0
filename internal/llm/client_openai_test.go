package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	})
	return srv, client
}

func TestOpenAIComplete(t *testing.T) {
	var gotReq openAIRequest
	_, client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"  generated text  "}}]}`))
	})

	resp, err := client.Complete(context.Background(), Request{
		System:      "you write config files",
		Prompt:      "write an nginx config",
		Temperature: 0.85,
		MaxTokens:   2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, 0.85, gotReq.Temperature)
	assert.Equal(t, 2048, gotReq.MaxTokens)
}

func TestOpenAIRateLimitIsTransient(t *testing.T) {
	_, client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, IsTransient(err))

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindRateLimit, pe.Kind)
}

func TestOpenAIAuthFailureIsFatal(t *testing.T) {
	_, client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestOpenAIServerErrorIsTransient(t *testing.T) {
	_, client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestOpenAINoAPIKey(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{Model: "gpt-4o-mini"})
	_, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestOpenAIEmptyChoices(t *testing.T) {
	_, client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindResponse, pe.Kind)
}
