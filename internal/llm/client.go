// Package llm provides the external language-model capability used by the
// categorization fallback: provider clients, environment-driven provider
// selection, rate limiting, and a per-session cost governor.
package llm

import "context"

// Client defines the interface for LLM providers. The core's whole contract
// with a provider is a single completion call; providers report token usage
// so the cost governor can meter spend.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (Response, error)
}

// Response is a provider completion with its token usage.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Config holds provider configuration resolved by the factory.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	// RequestsPerMinute bounds call rate; 0 uses the provider default.
	RequestsPerMinute int
}
