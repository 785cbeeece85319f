package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/internal/server"
	"github.com/gridglot/gridglot/pkg/gridglot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the cleaning, translation and analysis pipeline over
REST. Uploads become sessions; translation runs in the background and
is polled, cancelled and exported per session.

Examples:
  gridglot serve --addr :8080

  # Pin the provider for every session
  gridglot serve -p anthropic -m claude-sonnet-4-5-20250929`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("body-limit", "64MB", "maximum upload size (e.g. 16MB, 1GB)")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "evict sessions idle longer than this")

	serveCmd.Flags().StringP("provider", "p", "", "LLM provider (anthropic, openai, openrouter, ollama)")
	serveCmd.Flags().StringP("model", "m", "", "model to use (provider-specific)")
	serveCmd.Flags().StringP("api-key", "k", "", "API key (or set via environment)")
	serveCmd.Flags().String("base-url", "", "custom API base URL")
	serveCmd.Flags().String("cache", "", "persistent translation cache path (SQLite)")
	serveCmd.Flags().Duration("timeout", 0, "per-request LLM timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bodyLimitStr, _ := cmd.Flags().GetString("body-limit")
	bodyLimit, err := humanize.ParseBytes(bodyLimitStr)
	if err != nil {
		return fmt.Errorf("invalid --body-limit value %q: %w", bodyLimitStr, err)
	}

	sessionOpts := []gridglot.Option{
		gridglot.WithProvider(flagOr(cmd, "provider")),
		gridglot.WithModel(flagOr(cmd, "model")),
		gridglot.WithAPIKey(stringFlagOrViper(cmd, "api-key", "api_key")),
		gridglot.WithBaseURL(stringFlagOrViper(cmd, "base-url", "base_url")),
	}
	if cachePath, _ := cmd.Flags().GetString("cache"); cachePath != "" {
		sessionOpts = append(sessionOpts, gridglot.WithCachePath(cachePath))
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		sessionOpts = append(sessionOpts, gridglot.WithTimeout(d))
	}

	cfg := server.DefaultConfig()
	cfg.Addr, _ = cmd.Flags().GetString("addr")
	cfg.BodyLimit = int(bodyLimit)
	cfg.SessionTTL, _ = cmd.Flags().GetDuration("session-ttl")
	cfg.SessionOpts = sessionOpts

	srv := server.New(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()
	logInfo("Listening on %s", cfg.Addr)

	select {
	case err := <-errCh:
		logError("server stopped: %v", err)
		return err
	case <-ctx.Done():
	}

	logInfo("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logError("shutdown failed: %v", err)
		return err
	}
	return nil
}
