// Package translate batches unique spreadsheet content through an AI
// provider and returns index-aligned translations. The engine is owned by
// a session, runs one translation at a time, and degrades per batch: a
// failed batch costs its own items their translations (they keep their
// source text), never the run.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/pkg/cache"
	"github.com/gridglot/gridglot/pkg/llm"
)

// State is the engine's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

var (
	// ErrCancelled reports a run stopped by its context. The translations
	// finished before the stop are still returned alongside it.
	ErrCancelled = errors.New("translation cancelled")

	// ErrBusy reports a Translate call while another run is in flight.
	ErrBusy = errors.New("translation already in progress")
)

// Config tunes the engine.
type Config struct {
	// BatchSize is the number of items sent per provider call.
	BatchSize int `validate:"min=1,max=500"`

	// MaxItemLength caps each item's length inside the prompt, in runes.
	// Longer items are truncated with an ellipsis for the provider but
	// cached and returned under their full text.
	MaxItemLength int `validate:"min=100"`

	// MaxTokens bounds the completion size per batch.
	MaxTokens int `validate:"min=0"`

	Temperature float64 `validate:"gte=0,lte=2"`

	// MaxRetries is how many times a retryable provider error is retried
	// within one batch before the batch is written off.
	MaxRetries int `validate:"min=0,max=10"`

	// SkipSameLanguage leaves items already in the target language
	// untranslated. Only effective for two-letter ISO 639-1 targets.
	SkipSameLanguage bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     80,
		MaxItemLength: 1500,
		MaxTokens:     8192,
		Temperature:   0.2,
		MaxRetries:    2,
	}
}

var validate = validator.New()

// Stats describes one translation run.
type Stats struct {
	Items         int           `json:"items"`
	Translated    int           `json:"translated"`
	FromCache     int           `json:"from_cache"`
	FromStore     int           `json:"from_store"`
	Skipped       int           `json:"skipped"`
	FellBack      int           `json:"fell_back"`
	Batches       int           `json:"batches"`
	FailedBatches int           `json:"failed_batches"`
	InputTokens   int           `json:"input_tokens"`
	OutputTokens  int           `json:"output_tokens"`
	Duration      time.Duration `json:"duration"`
}

// Engine translates batches of unique content through a provider.
type Engine struct {
	provider llm.Provider
	cfg      Config

	memory   *cache.Cache[string, string]
	store    *cache.Store
	observer llm.Observer

	retryBackoff time.Duration

	mu    sync.Mutex
	state State
	stats Stats
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithCache reuses translations within the process through an LRU.
func WithCache(c *cache.Cache[string, string]) EngineOption {
	return func(e *Engine) {
		e.memory = c
	}
}

// WithStore persists translations across sessions.
func WithStore(s *cache.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithObserver registers an observer notified after every provider call.
func WithObserver(obs llm.Observer) EngineOption {
	return func(e *Engine) {
		e.observer = obs
	}
}

// NewEngine creates an engine bound to a provider. Zero config fields take
// their defaults; out-of-range values are rejected.
func NewEngine(provider llm.Provider, cfg Config, opts ...EngineOption) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("provider required")
	}

	def := DefaultConfig()
	if cfg.BatchSize == 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxItemLength == 0 {
		cfg.MaxItemLength = def.MaxItemLength
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		provider:     provider,
		cfg:          cfg,
		state:        StateIdle,
		retryBackoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns the stats of the latest run (complete or in progress).
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Translate translates items into targetLang and returns a slice of the
// same length, index-aligned with the input. Items whose translation could
// not be obtained carry their source text, so the result is always safe to
// apply.
//
// Cancellation is checked before each batch is dispatched and again after
// each response; on cancellation the work done so far is returned together
// with ErrCancelled.
func (e *Engine) Translate(ctx context.Context, items []string, targetLang string) ([]string, error) {
	if err := e.begin(len(items)); err != nil {
		return nil, err
	}
	start := time.Now()

	if strings.TrimSpace(targetLang) == "" {
		e.end(StateFailed, start)
		return nil, errors.New("target language required")
	}

	out := make([]string, len(items))
	copy(out, items)

	if len(items) == 0 {
		e.end(StateCompleted, start)
		return out, nil
	}

	pending := e.resolveKnown(ctx, items, out, targetLang)

	logger.Info("translation run started",
		"items", len(items),
		"pending", len(pending),
		"target", targetLang,
		"provider", e.provider.Name(),
		"model", e.provider.Model())

	for batchStart := 0; batchStart < len(pending); batchStart += e.cfg.BatchSize {
		if ctx.Err() != nil {
			e.end(StateCancelled, start)
			return out, ErrCancelled
		}

		batchEnd := min(batchStart+e.cfg.BatchSize, len(pending))
		indexes := pending[batchStart:batchEnd]
		batchNum := batchStart/e.cfg.BatchSize + 1

		e.bump(func(s *Stats) { s.Batches++ })

		translations, err := e.translateBatch(ctx, batchNum, items, indexes, targetLang)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.end(StateCancelled, start)
				return out, ErrCancelled
			}
			logger.Error("batch translation failed, keeping source text",
				"batch", batchNum,
				"size", len(indexes),
				"error", err)
			e.bump(func(s *Stats) {
				s.FailedBatches++
				s.FellBack += len(indexes)
			})
			continue
		}

		// A batch that made it back is complete; its translations are kept
		// even when cancellation lands right after the response.
		e.reconcile(ctx, items, indexes, translations, out, targetLang, batchNum)

		if ctx.Err() != nil {
			e.end(StateCancelled, start)
			return out, ErrCancelled
		}
	}

	e.end(StateCompleted, start)
	return out, nil
}

// begin moves the engine into the running state, rejecting concurrent runs.
func (e *Engine) begin(items int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return ErrBusy
	}
	e.state = StateRunning
	e.stats = Stats{Items: items}
	return nil
}

func (e *Engine) end(s State, start time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	e.stats.Duration = time.Since(start)
}

func (e *Engine) bump(fn func(*Stats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.stats)
}

// resolveKnown fills out with cache and store hits and same-language skips,
// returning the indexes that still need the provider.
func (e *Engine) resolveKnown(ctx context.Context, items, out []string, targetLang string) []int {
	pending := make([]int, 0, len(items))
	langCode := strings.ToLower(strings.TrimSpace(targetLang))

	for i, item := range items {
		if e.cfg.SkipSameLanguage && DetectLanguage(item) == langCode {
			e.bump(func(s *Stats) { s.Skipped++ })
			continue
		}

		if e.memory != nil {
			if v, ok := e.memory.Get(cache.TranslationKey(item, targetLang)); ok {
				out[i] = v
				e.bump(func(s *Stats) { s.FromCache++ })
				continue
			}
		}

		if e.store != nil {
			v, found, err := e.store.Get(ctx, item, targetLang, e.provider.Name(), e.provider.Model())
			if err != nil {
				logger.Warn("translation store lookup failed", "error", err)
			} else if found {
				out[i] = v
				e.remember(item, targetLang, v)
				e.bump(func(s *Stats) { s.FromStore++ })
				continue
			}
		}

		pending = append(pending, i)
	}

	return pending
}

// translateBatch sends one batch and parses the response, retrying
// retryable provider errors.
func (e *Engine) translateBatch(ctx context.Context, batchNum int, items []string, indexes []int, targetLang string) ([]string, error) {
	prompt := make([]string, len(indexes))
	for k, idx := range indexes {
		prompt[k] = TruncateItem(items[idx], e.cfg.MaxItemLength)
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt},
			{Role: llm.RoleUser, Content: BuildBatchPrompt(prompt, targetLang)},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		JSONSchema:  batchSchema(),
		StrictMode:  true,
	}

	resp, err := e.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	translations, strategy := ParseBatch(resp.Content)
	logger.Debug("batch parsed",
		"batch", batchNum,
		"strategy", strategy,
		"items", len(translations))
	return translations, nil
}

// execute runs one provider call, retrying retryable errors with a linear
// backoff and notifying the observer on every attempt.
func (e *Engine) execute(ctx context.Context, req llm.Request) (*llm.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * e.retryBackoff
			logger.Warn("retrying provider call",
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		callStart := time.Now()
		resp, err := e.provider.Execute(ctx, req)
		e.observe(ctx, attempt, callStart, resp, err)

		if err != nil {
			lastErr = err
			if isRetryable(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		e.bump(func(s *Stats) {
			s.InputTokens += resp.Usage.InputTokens
			s.OutputTokens += resp.Usage.OutputTokens
		})
		return resp, nil
	}

	return nil, lastErr
}

// reconcile writes a batch's translations into out. A count mismatch is
// squared off by truncating extras or padding with the source text, and
// logged loudly; it never aborts a run.
func (e *Engine) reconcile(ctx context.Context, items []string, indexes []int, translations []string, out []string, targetLang string, batchNum int) {
	if len(translations) != len(indexes) {
		logger.Error("translation count mismatch, padding with source text",
			"batch", batchNum,
			"expected", len(indexes),
			"got", len(translations))
		if len(translations) > len(indexes) {
			translations = translations[:len(indexes)]
		}
	}

	for k, idx := range indexes {
		var t string
		if k < len(translations) {
			t = strings.TrimSpace(translations[k])
		}
		if t == "" {
			e.bump(func(s *Stats) { s.FellBack++ })
			continue
		}

		out[idx] = t
		e.bump(func(s *Stats) { s.Translated++ })
		e.remember(items[idx], targetLang, t)

		if e.store != nil {
			// Completed work is persisted even when the run is being
			// cancelled, so the next run starts from the store.
			if err := e.store.Put(context.WithoutCancel(ctx), items[idx], targetLang, e.provider.Name(), e.provider.Model(), t); err != nil {
				logger.Warn("translation store write failed", "error", err)
			}
		}
	}
}

func (e *Engine) remember(item, targetLang, translation string) {
	if e.memory != nil {
		e.memory.Set(cache.TranslationKey(item, targetLang), translation)
	}
}

func (e *Engine) observe(ctx context.Context, attempt int, start time.Time, resp *llm.Response, err error) {
	if e.observer == nil {
		return
	}
	event := llm.CallEvent{
		Provider:  e.provider.Name(),
		Model:     e.provider.Model(),
		Attempt:   attempt,
		Duration:  time.Since(start),
		Err:       err,
		StartedAt: start,
	}
	if resp != nil {
		event.Usage = resp.Usage
		event.Model = resp.Model
	}
	e.observer.OnCall(ctx, event)
}

// isRetryable reports whether a provider error is worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"429",
		"500",
		"502",
		"503",
		"504",
		"timeout",
		"connection reset",
		"overloaded",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
