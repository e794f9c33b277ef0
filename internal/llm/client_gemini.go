package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"decoyforge/internal/logging"
)

// GeminiClient generates through the Google GenAI SDK. The SDK owns
// transport, so failures are classified from error text rather than status
// codes.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &ProviderError{Provider: "gemini", Kind: KindAuth, Message: "API key not configured"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

// Complete sends a single-turn generation request.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	logging.ProviderDebug("[gemini] request: model=%s temp=%.2f prompt_len=%d", c.model, req.Temperature, len(req.Prompt))

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, &ProviderError{Provider: c.Name(), Kind: KindResponse, Message: "empty response"}
	}
	return &Response{Text: text, Model: c.model}, nil
}

// classifyGeminiError maps SDK errors onto the shared taxonomy.
func classifyGeminiError(err error) *ProviderError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return &ProviderError{Provider: "gemini", Kind: KindRateLimit, Message: err.Error(), Transient: true, Err: err}
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "api key"):
		return &ProviderError{Provider: "gemini", Kind: KindAuth, Message: err.Error(), Err: err}
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return &ProviderError{Provider: "gemini", Kind: KindTimeout, Message: err.Error(), Transient: true, Err: err}
	case strings.Contains(msg, "500") || strings.Contains(msg, "503") || strings.Contains(msg, "unavailable"):
		return &ProviderError{Provider: "gemini", Kind: KindConnection, Message: err.Error(), Transient: true, Err: err}
	default:
		return &ProviderError{Provider: "gemini", Kind: KindResponse, Message: err.Error(), Err: err}
	}
}
