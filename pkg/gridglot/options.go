// Package gridglot provides the public API for cleaning, translating and
// analyzing spreadsheet content.
package gridglot

import (
	"time"

	"github.com/gridglot/gridglot/pkg/llm"
)

// Config holds all session configuration.
type Config struct {
	// LLM settings
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	// Translation settings
	TargetLanguage   string
	BatchSize        int
	MaxItemLength    int
	MaxTokens        int
	Temperature      float64
	SkipSameLanguage bool

	// Transport settings
	Timeout    time.Duration
	MaxRetries int

	// Cache settings
	CacheSize int
	CachePath string

	// Injected collaborators (mainly for tests)
	LLM      llm.Provider
	Observer llm.Observer
}

// DefaultConfig returns sensible defaults. The provider is detected from
// the environment when left empty.
func DefaultConfig() Config {
	return Config{
		TargetLanguage: "en",
		BatchSize:      80,
		MaxItemLength:  1500,
		Temperature:    0.2,
		Timeout:        120 * time.Second,
		MaxRetries:     3,
		CacheSize:      1024,
	}
}

// Option configures a Session.
type Option func(*Config)

// WithProvider sets the LLM provider (anthropic, openai, openrouter, ollama).
func WithProvider(provider string) Option {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithModel sets the LLM model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTargetLanguage sets the default target language for translations.
func WithTargetLanguage(lang string) Option {
	return func(c *Config) {
		c.TargetLanguage = lang
	}
}

// WithBatchSize sets the number of items per translation request.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithMaxItemLength caps each item's length inside translation prompts.
func WithMaxItemLength(n int) Option {
	return func(c *Config) {
		c.MaxItemLength = n
	}
}

// WithMaxTokens bounds the completion size per batch.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the LLM temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithSkipSameLanguage leaves items already in the target language alone.
func WithSkipSameLanguage(enabled bool) Option {
	return func(c *Config) {
		c.SkipSameLanguage = enabled
	}
}

// WithTimeout sets the per-request transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithMaxRetries sets the transport-level retry limit.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithCacheSize sets the in-memory LRU capacity, in entries.
func WithCacheSize(n int) Option {
	return func(c *Config) {
		c.CacheSize = n
	}
}

// WithCachePath enables the persistent translation store at the given
// SQLite path.
func WithCachePath(path string) Option {
	return func(c *Config) {
		c.CachePath = path
	}
}

// WithLLM injects a ready-made provider, bypassing provider detection.
func WithLLM(p llm.Provider) Option {
	return func(c *Config) {
		c.LLM = p
	}
}

// WithObserver registers an observer notified after every provider call.
func WithObserver(obs llm.Observer) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}
