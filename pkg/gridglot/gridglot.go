package gridglot

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/internal/source"
	"github.com/gridglot/gridglot/pkg/cache"
	"github.com/gridglot/gridglot/pkg/grid"
	"github.com/gridglot/gridglot/pkg/llm"
	"github.com/gridglot/gridglot/pkg/normalize"
	"github.com/gridglot/gridglot/pkg/quality"
	"github.com/gridglot/gridglot/pkg/sheet"
	"github.com/gridglot/gridglot/pkg/translate"
)

// ErrCancelled is re-exported from pkg/translate so callers can
// distinguish a user stop from a service failure with one import.
var ErrCancelled = translate.ErrCancelled

// Version returns the module version consumers pulled via go get.
// Returns "(devel)" when built from source without version info.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	const path = "github.com/gridglot/gridglot"
	if info.Main.Path == path {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return "(devel)"
}

// Session is the main entry point. It owns the translation engine and the
// caches, so separate sessions never share state.
type Session struct {
	provider llm.Provider
	engine   *translate.Engine

	normMemo *cache.Cache[string, normalize.Result]
	memory   *cache.Cache[string, string]
	analyses *cache.Cache[string, *translate.ContentAnalysis]
	store    *cache.Store

	config Config
}

// New creates a session. The provider is resolved from the configuration,
// falling back to environment detection when none is named.
func New(opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	provider := cfg.LLM
	if provider == nil {
		name := cfg.Provider
		apiKey := cfg.APIKey
		if name == "" {
			var detected string
			name, detected = llm.DetectProvider()
			if apiKey == "" {
				apiKey = detected
			}
			logger.Debug("provider detected from environment", "provider", name)
		}

		var err error
		provider, err = llm.NewProvider(name, llm.ProviderConfig{
			APIKey:     apiKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
	}

	normMemo, err := cache.New[string, normalize.Result](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	memory, err := cache.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	analyses, err := cache.New[string, *translate.ContentAnalysis](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	var store *cache.Store
	if cfg.CachePath != "" {
		store, err = cache.OpenStore(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open translation store: %w", err)
		}
	}

	engineOpts := []translate.EngineOption{translate.WithCache(memory)}
	if store != nil {
		engineOpts = append(engineOpts, translate.WithStore(store))
	}
	if cfg.Observer != nil {
		engineOpts = append(engineOpts, translate.WithObserver(cfg.Observer))
	}

	engine, err := translate.NewEngine(provider, translate.Config{
		BatchSize:        cfg.BatchSize,
		MaxItemLength:    cfg.MaxItemLength,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		SkipSameLanguage: cfg.SkipSameLanguage,
	}, engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return &Session{
		provider: provider,
		engine:   engine,
		normMemo: normMemo,
		memory:   memory,
		analyses: analyses,
		store:    store,
		config:   cfg,
	}, nil
}

// Ingest parses spreadsheet bytes into a grid. The session's normalization
// memo is always in play; callers may add further ingest options.
func (s *Session) Ingest(ctx context.Context, data []byte, opts ...sheet.Option) (*grid.Grid, error) {
	all := append([]sheet.Option{sheet.WithMemo(s.normMemo)}, opts...)
	return sheet.Ingest(ctx, data, all...)
}

// IngestFrom loads a local path or HTTP(S) URL and ingests it.
func (s *Session) IngestFrom(ctx context.Context, location string, opts ...sheet.Option) (*grid.Grid, error) {
	data, err := source.Load(ctx, location, source.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, data, opts...)
}

// Normalize cleans one raw cell value through the session's memo.
func (s *Session) Normalize(raw string) normalize.Result {
	if hit, ok := s.normMemo.Get(raw); ok {
		return hit
	}
	res := normalize.Normalize(raw)
	s.normMemo.Set(raw, res)
	return res
}

// UniqueContent returns the grid's distinct translatable strings in the
// deterministic order the engine would process them.
func (s *Session) UniqueContent(g *grid.Grid) []string {
	return grid.CollectTranslatable(g)
}

// Translate translates a list of strings into the target language. An
// empty lang falls back to the configured default.
func (s *Session) Translate(ctx context.Context, items []string, lang string) ([]string, error) {
	if lang == "" {
		lang = s.config.TargetLanguage
	}
	return s.engine.Translate(ctx, items, lang)
}

// TranslateGrid translates every translatable cell of the grid and applies
// the results, returning a new grid of identical shape. On cancellation
// the grid carries the translations finished so far and the error is
// ErrCancelled.
func (s *Session) TranslateGrid(ctx context.Context, g *grid.Grid, lang string) (*grid.Grid, error) {
	if lang == "" {
		lang = s.config.TargetLanguage
	}

	unique := grid.CollectTranslatable(g)
	translations, err := s.engine.Translate(ctx, unique, lang)
	if err != nil && translations == nil {
		return nil, err
	}

	m := make(map[string]string, len(unique))
	for i, content := range unique {
		if translations[i] != content {
			m[content] = translations[i]
		}
	}

	return grid.Apply(g, m), err
}

// Analyze asks the provider to review one piece of content. Results are
// memoized by content fingerprint for the life of the session.
func (s *Session) Analyze(ctx context.Context, content string) (*translate.ContentAnalysis, error) {
	key := cache.Fingerprint(content)
	if hit, ok := s.analyses.Get(key); ok {
		return hit, nil
	}

	analysis, err := s.engine.AnalyzeContent(ctx, content)
	if err != nil {
		return nil, err
	}
	s.analyses.Set(key, analysis)
	return analysis, nil
}

// Quality runs the statistical dataset analyzer over a grid.
func (s *Session) Quality(g *grid.Grid) *quality.Report {
	return quality.Analyze(g)
}

// Export writes the grid back out as an xlsx workbook.
func (s *Session) Export(g *grid.Grid) ([]byte, error) {
	return sheet.Export(g)
}

// ExportCSV writes the grid as CSV.
func (s *Session) ExportCSV(g *grid.Grid) ([]byte, error) {
	return sheet.ExportCSV(g)
}

// State returns the translation engine's lifecycle state.
func (s *Session) State() translate.State {
	return s.engine.State()
}

// Stats returns the latest translation run's stats.
func (s *Session) Stats() translate.Stats {
	return s.engine.Stats()
}

// CacheStats returns hit/miss counters for the translation LRU.
func (s *Session) CacheStats() cache.Stats {
	return s.memory.Stats()
}

// Provider returns the provider name backing this session.
func (s *Session) Provider() string {
	return s.provider.Name()
}

// Close releases the persistent store, if any.
func (s *Session) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
