// Package llm adapts text-generation providers behind a single Client
// interface. Providers differ in transport (OpenAI-compatible HTTP, Ollama's
// local API, the Gemini SDK) but share the request shape and the
// transient/fatal error split that drives retry policy.
package llm

import (
	"context"
)

// Request is a single completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is a completed generation.
type Response struct {
	Text  string
	Model string
}

// Client generates text from a prompt. Implementations must honor ctx
// cancellation and classify failures with *ProviderError so the retry layer
// can tell transient faults from fatal ones.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}
