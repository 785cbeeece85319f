// Package server exposes the translation pipeline over HTTP. Uploads
// create sessions; translation runs in the background against the
// session's engine and is polled, cancelled and exported through the
// session resource.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/pkg/gridglot"
)

// Config holds server configuration.
type Config struct {
	Addr string

	// BodyLimit caps upload size in bytes.
	BodyLimit int

	// SessionTTL evicts sessions idle longer than this.
	SessionTTL time.Duration

	// SessionOpts configure every session the server creates.
	SessionOpts []gridglot.Option
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:       ":8080",
		BodyLimit:  64 * 1024 * 1024,
		SessionTTL: 30 * time.Minute,
	}
}

// Server hosts the REST API.
type Server struct {
	app   *fiber.App
	store *sessionStore
	cfg   Config
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.BodyLimit == 0 {
		cfg.BodyLimit = def.BodyLimit
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = def.SessionTTL
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:   "gridglot",
			BodyLimit: cfg.BodyLimit,
		}),
		store: newSessionStore(cfg.SessionTTL),
		cfg:   cfg,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Post("/sessions/:id/translate", s.handleTranslate)
	api.Post("/sessions/:id/cancel", s.handleCancel)
	api.Get("/sessions/:id/export", s.handleExport)
	api.Get("/sessions/:id/quality", s.handleQuality)
	api.Delete("/sessions/:id", s.handleDeleteSession)
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	logger.Info("server listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown drains connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.store.Close()
	return err
}
