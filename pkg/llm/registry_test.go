package llm

import (
	"context"
	"testing"
)

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider("nope", DefaultProviderConfig())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "openrouter"} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewProvider(name, ProviderConfig{}); err == nil {
				t.Errorf("expected missing-key error for %s", name)
			}
		})
	}
}

func TestNewProvider_OllamaNeedsNoKey(t *testing.T) {
	p, err := NewProvider("ollama", ProviderConfig{})
	if err != nil {
		t.Fatalf("NewProvider(ollama) error = %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", p.Name())
	}
	if p.Model() != DefaultModels["ollama"] {
		t.Errorf("Model() = %q, want default %q", p.Model(), DefaultModels["ollama"])
	}
}

func TestRegisterProvider_Custom(t *testing.T) {
	RegisterProvider("custom-test", func(cfg ProviderConfig) (Provider, error) {
		return &fakeProvider{name: "custom-test", model: cfg.Model}, nil
	})

	if !IsRegistered("custom-test") {
		t.Fatal("custom provider not registered")
	}

	p, err := NewProvider("custom-test", ProviderConfig{Model: "m"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Model() != "m" {
		t.Errorf("Model() = %q, want m", p.Model())
	}
}

func TestDetectProvider_Priority(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	if name, _ := DetectProvider(); name != "ollama" {
		t.Errorf("DetectProvider() with no keys = %q, want ollama", name)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if name, key := DetectProvider(); name != "openai" || key != "sk-test" {
		t.Errorf("DetectProvider() = %q/%q, want openai/sk-test", name, key)
	}

	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	if name, _ := DetectProvider(); name != "anthropic" {
		t.Errorf("DetectProvider() = %q, want anthropic over openai", name)
	}

	t.Setenv("OPENROUTER_API_KEY", "or-test")
	if name, _ := DetectProvider(); name != "openrouter" {
		t.Errorf("DetectProvider() = %q, want openrouter first", name)
	}
}

func TestHasAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if !HasAPIKey("openai") {
		t.Error("HasAPIKey(openai) = false with key set")
	}
	if HasAPIKey("ollama") {
		t.Error("HasAPIKey(ollama) = true, ollama has no key")
	}
}

func TestGetDefaultModel(t *testing.T) {
	if got := GetDefaultModel("openai"); got == "" {
		t.Error("GetDefaultModel(openai) returned empty")
	}
	if got := GetDefaultModel("unknown"); got != "" {
		t.Errorf("GetDefaultModel(unknown) = %q, want empty", got)
	}
}

type fakeProvider struct {
	name  string
	model string
}

func (f *fakeProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	return &Response{Content: "{}"}, nil
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.model }
