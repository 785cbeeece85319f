// Package llm provides a unified interface over the AI backends used for
// translation: Anthropic, OpenAI, OpenRouter and Ollama. Providers take a
// chat request with an optional JSON schema and return the raw completion;
// interpreting the content is the caller's job.
package llm

import (
	"context"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
}

// Request represents a completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// JSONSchema asks the provider to constrain output to the schema.
	// Backends without native schema enforcement treat it as advisory;
	// callers must still be prepared to parse free-form output.
	JSONSchema map[string]any
	// StrictMode enables strict schema validation on providers that
	// distinguish it.
	StrictMode bool
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response represents the result of a completion.
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
	// Model is the model that actually served the request, which can
	// differ from the configured one on auto-routing providers.
	Model    string
	Duration time.Duration
}

// Provider is the interface all translation backends implement.
type Provider interface {
	// Execute sends a completion request and returns the response.
	Execute(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Model returns the configured model name.
	Model() string
}

// ProviderConfig holds common configuration for providers.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string // For custom endpoints or self-hosted gateways
	Model      string
	MaxRetries int
	Timeout    time.Duration
	// HTTPReferer and AppTitle are sent for OpenRouter attribution.
	HTTPReferer string
	AppTitle    string
}

// DefaultProviderConfig returns sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		MaxRetries: 3,
		Timeout:    120 * time.Second,
	}
}
