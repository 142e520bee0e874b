package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider default models.
const (
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultOllamaModel    = "llama3.2"
)

// DetectConfig resolves the provider from the environment. An explicit
// LLM_PROVIDER wins; otherwise the presence of a named credential selects
// the provider and its default model, and with no credentials at all the
// local Ollama default is used so the pipeline works offline.
func DetectConfig() Config {
	explicit := strings.ToLower(os.Getenv("LLM_PROVIDER"))

	if explicit == "anthropic" || (explicit == "" && os.Getenv("ANTHROPIC_API_KEY") != "") {
		return Config{
			Provider: "anthropic",
			APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
			Model:    envOr("ANTHROPIC_MODEL", defaultAnthropicModel),
		}
	}

	if explicit == "openai" || (explicit == "" && os.Getenv("OPENAI_API_KEY") != "") {
		return Config{
			Provider: "openai",
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			Model:    envOr("OPENAI_MODEL", defaultOpenAIModel),
		}
	}

	return Config{
		Provider: "ollama",
		Model:    envOr("OLLAMA_MODEL", defaultOllamaModel),
		BaseURL:  envOr("OLLAMA_HOST", "http://localhost:11434"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewClient creates a raw LLM client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
