package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/internal/output"
	"github.com/gridglot/gridglot/pkg/gridglot"
)

var reviewCmd = &cobra.Command{
	Use:   "review [text]",
	Short: "Ask the LLM to review one piece of content",
	Long: `Review sends a single string to the provider and reports typos,
grammar problems, leftover markup and encoding damage, together with a
suggested fix and a quality score from 0 to 100.

Examples:
  gridglot review "Best quality prodcuts &amp; fast delivery"

  # Review a file's contents
  gridglot review --file description.txt --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringP("provider", "p", "", "LLM provider (anthropic, openai, openrouter, ollama)")
	reviewCmd.Flags().StringP("model", "m", "", "model to use (provider-specific)")
	reviewCmd.Flags().StringP("api-key", "k", "", "API key (or set via environment)")
	reviewCmd.Flags().String("base-url", "", "custom API base URL")
	reviewCmd.Flags().String("file", "", "read the content from a file instead of the argument")
	reviewCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
	reviewCmd.Flags().Duration("timeout", 0, "per-request timeout")
}

func runReview(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	content, err := reviewContent(cmd, args)
	if err != nil {
		return err
	}

	opts := []gridglot.Option{
		gridglot.WithProvider(flagOr(cmd, "provider")),
		gridglot.WithModel(flagOr(cmd, "model")),
		gridglot.WithAPIKey(stringFlagOrViper(cmd, "api-key", "api_key")),
		gridglot.WithBaseURL(stringFlagOrViper(cmd, "base-url", "base_url")),
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		opts = append(opts, gridglot.WithTimeout(d))
	}

	sess, err := gridglot.New(opts...)
	if err != nil {
		logError("failed to create session: %v", err)
		return err
	}
	defer sess.Close()

	logInfo("Reviewing %d characters via %s...", len(content), sess.Provider())
	start := time.Now()

	analysis, err := sess.Analyze(ctx, content)
	if err != nil {
		logError("review failed: %v", err)
		return err
	}
	logInfo("Review finished in %s", time.Since(start).Round(time.Millisecond))

	formatStr, _ := cmd.Flags().GetString("format")
	w, err := output.NewWriter(os.Stdout, output.Format(formatStr))
	if err != nil {
		logError("%v", err)
		return err
	}
	defer w.Close()

	return w.Write(analysis)
}

func reviewContent(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("nothing to review: pass content as an argument or via --file")
	}
	return args[0], nil
}

// flagOr reads a command flag, falling back to the viper key of the same
// name when the flag was left unset.
func flagOr(cmd *cobra.Command, name string) string {
	return stringFlagOrViper(cmd, name, name)
}

func stringFlagOrViper(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}
