// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

// Provider names a Responder implementation.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAgent  Provider = "agent"
)

type Config struct {
	Provider Provider

	// OpenAI-compatible chat completion
	LLMKey       string
	LLMBaseURL   string
	Model        string
	SystemPrompt string

	// HTTP agent API
	AgentURL string
	AgentKey string

	// Per-attempt timeout, zero for none; the caller's context bounds the whole call.
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.LLMKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the openai provider")
		}
		if c.Model == "" {
			return fmt.Errorf("LLM_MODEL is required for the openai provider")
		}
	case ProviderAgent:
		if c.AgentURL == "" {
			return fmt.Errorf("AGENT_API_URL is required for the agent provider")
		}
	default:
		return fmt.Errorf("unknown responder provider %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Second,
		Temperature: 0.3,
		TopP:        0.9,
	}
}
