package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

// OllamaProvider implements Provider for a local Ollama instance. No API
// key is needed. Recent Ollama versions accept a full JSON schema in the
// chat request's format field, which maps directly onto Request.JSONSchema.
type OllamaProvider struct {
	http    *resty.Client
	baseURL string
	model   string
	cfg     ProviderConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg ProviderConfig) (*OllamaProvider, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModels["ollama"]
	}

	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.MaxRetries > 0 {
		client.SetRetryCount(cfg.MaxRetries)
	}

	return &OllamaProvider{
		http:    client,
		baseURL: baseURL,
		model:   model,
		cfg:     cfg,
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   any             `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// Execute sends a completion request to Ollama.
func (p *OllamaProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	body := ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}
	if req.JSONSchema != nil {
		body.Format = req.JSONSchema
	}

	var result ollamaChatResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(p.baseURL + "/api/chat")
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama API error: %s; body: %s", resp.Status(), resp.String())
	}

	return &Response{
		Content:      result.Message.Content,
		FinishReason: result.DoneReason,
		Usage: Usage{
			InputTokens:  result.PromptEvalCount,
			OutputTokens: result.EvalCount,
		},
		Model:    result.Model,
		Duration: time.Since(start),
	}, nil
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the configured model name.
func (p *OllamaProvider) Model() string {
	return p.model
}

var _ Provider = (*OllamaProvider)(nil)
