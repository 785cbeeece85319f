package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/internal/output"
	"github.com/gridglot/gridglot/internal/source"
	"github.com/gridglot/gridglot/pkg/gridglot"
	"github.com/gridglot/gridglot/pkg/sheet"
	"github.com/gridglot/gridglot/pkg/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file-or-url]",
	Short: "Clean and translate a spreadsheet",
	Long: `Translate loads a spreadsheet from a local path or URL, cleans the
cell content, translates it into the target language and writes the
result with the original layout intact.

Repeated strings are translated once. With --cache the translations
survive between runs, so re-running an interrupted job only pays for
the batches that never finished.

Examples:
  # Translate a local workbook into Russian
  gridglot translate catalog.xlsx -t ru

  # Translate a remote CSV with a persistent cache
  gridglot translate https://example.com/export.csv -t de --cache ~/.gridglot.db

  # Pick a sheet and keep rows already in the target language
  gridglot translate catalog.xlsx -t fr --sheet Products --skip-same-language`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	// LLM flags
	translateCmd.Flags().StringP("provider", "p", "", "LLM provider (anthropic, openai, openrouter, ollama)")
	translateCmd.Flags().StringP("model", "m", "", "model to use (provider-specific)")
	translateCmd.Flags().StringP("api-key", "k", "", "API key (or set via environment)")
	translateCmd.Flags().String("base-url", "", "custom API base URL")

	// Translation flags
	translateCmd.Flags().StringP("target-lang", "t", "", "target language (ISO 639-1 code or name)")
	translateCmd.Flags().Int("batch-size", 0, "strings per translation request")
	translateCmd.Flags().Int("max-item-length", 0, "per-string length cap inside prompts")
	translateCmd.Flags().Float64("temperature", -1, "LLM temperature")
	translateCmd.Flags().Bool("skip-same-language", false, "leave strings already in the target language alone")
	translateCmd.Flags().Duration("timeout", 0, "per-request timeout")

	// Input/output flags
	translateCmd.Flags().StringP("output", "o", "", "output file (default: input name with language suffix)")
	translateCmd.Flags().StringP("format", "f", "", "output format: xlsx or csv (default: from output extension)")
	translateCmd.Flags().String("sheet", "", "sheet to process (xlsx only, default: first sheet)")
	translateCmd.Flags().String("max-size", "50MB", "maximum input size (e.g. 10MB, 1GB)")
	translateCmd.Flags().String("cache", "", "persistent translation cache path (SQLite)")
	translateCmd.Flags().String("report", "", "write run statistics to a JSON file")

	_ = translateCmd.MarkFlagRequired("target-lang")

	// Bind to viper for config file support
	_ = viper.BindPFlag("provider", translateCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("model", translateCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("api_key", translateCmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("base_url", translateCmd.Flags().Lookup("base-url"))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input := args[0]
	targetLang, _ := cmd.Flags().GetString("target-lang")
	sheetName, _ := cmd.Flags().GetString("sheet")
	cachePath, _ := cmd.Flags().GetString("cache")

	maxSizeStr, _ := cmd.Flags().GetString("max-size")
	maxSize, err := humanize.ParseBytes(maxSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --max-size value %q: %w", maxSizeStr, err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := resolveFormat(formatStr, outPath)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = deriveOutputPath(input, targetLang, format)
	}

	opts := []gridglot.Option{
		gridglot.WithProvider(viper.GetString("provider")),
		gridglot.WithModel(viper.GetString("model")),
		gridglot.WithAPIKey(viper.GetString("api_key")),
		gridglot.WithBaseURL(viper.GetString("base_url")),
		gridglot.WithTargetLanguage(targetLang),
	}
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		opts = append(opts, gridglot.WithBatchSize(n))
	}
	if n, _ := cmd.Flags().GetInt("max-item-length"); n > 0 {
		opts = append(opts, gridglot.WithMaxItemLength(n))
	}
	if temp, _ := cmd.Flags().GetFloat64("temperature"); temp >= 0 {
		opts = append(opts, gridglot.WithTemperature(temp))
	}
	if skip, _ := cmd.Flags().GetBool("skip-same-language"); skip {
		opts = append(opts, gridglot.WithSkipSameLanguage(true))
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		opts = append(opts, gridglot.WithTimeout(d))
	}
	if cachePath != "" {
		opts = append(opts, gridglot.WithCachePath(cachePath))
	}

	sess, err := gridglot.New(opts...)
	if err != nil {
		logError("failed to create session: %v", err)
		return err
	}
	defer sess.Close()

	logInfo("Loading %s...", input)
	data, err := source.Load(ctx, input, source.Options{
		MaxSize: int64(maxSize),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		logError("failed to load input: %v", err)
		return err
	}

	ingestOpts := []sheet.Option{
		sheet.WithProgress(func(done, total int) {
			logger.Debug("cleaning rows", "done", done, "total", total)
		}),
	}
	if sheetName != "" {
		ingestOpts = append(ingestOpts, sheet.WithSheet(sheetName))
	}

	g, err := sess.Ingest(ctx, data, ingestOpts...)
	if err != nil {
		logError("failed to parse input: %v", err)
		return err
	}

	rows, cols := g.Shape()
	logInfo("Translating %d rows x %d columns into %s via %s...", rows, cols, targetLang, sess.Provider())

	translated, terr := sess.TranslateGrid(ctx, g, targetLang)
	if terr != nil && !errors.Is(terr, gridglot.ErrCancelled) {
		logError("translation failed: %v", terr)
		return terr
	}
	if errors.Is(terr, gridglot.ErrCancelled) {
		logError("translation cancelled, writing partial result")
	}

	var out []byte
	switch format {
	case "csv":
		out, err = sess.ExportCSV(translated)
	default:
		out, err = sess.Export(translated)
	}
	if err != nil {
		logError("failed to export: %v", err)
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		logError("failed to write %s: %v", outPath, err)
		return err
	}

	stats := sess.Stats()
	logInfo("Wrote %s (%s)", outPath, humanize.Bytes(uint64(len(out))))
	logInfo("Translated %d of %d unique strings in %s (%d cached, %d skipped, %d kept source text)",
		stats.Translated, stats.Items, stats.Duration.Round(time.Millisecond),
		stats.FromCache+stats.FromStore, stats.Skipped, stats.FellBack)
	if stats.InputTokens > 0 || stats.OutputTokens > 0 {
		logInfo("Token usage: %d in / %d out across %d batches", stats.InputTokens, stats.OutputTokens, stats.Batches)
	}
	if stats.FailedBatches > 0 {
		logError("%d of %d batches failed, their strings keep the source text", stats.FailedBatches, stats.Batches)
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := writeReport(reportPath, stats); err != nil {
			logError("failed to write report: %v", err)
			return err
		}
		logInfo("Wrote run report to %s", reportPath)
	}

	return terr
}

func writeReport(path string, stats translate.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := output.NewWriter(f, output.FormatJSON)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Write(stats)
}

// resolveFormat picks the export format from the flag, falling back to the
// output file extension.
func resolveFormat(flag, outPath string) (string, error) {
	switch strings.ToLower(flag) {
	case "xlsx", "csv":
		return strings.ToLower(flag), nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q (use xlsx or csv)", flag)
	}

	if strings.EqualFold(filepath.Ext(outPath), ".csv") {
		return "csv", nil
	}
	return "xlsx", nil
}

// deriveOutputPath builds "name.lang.ext" next to the input, or in the
// working directory for URLs.
func deriveOutputPath(input, lang, format string) string {
	name := input
	if source.IsRemote(input) {
		if u, err := url.Parse(input); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			name = path.Base(u.Path)
		} else {
			name = "translated"
		}
	}

	ext := "." + format
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	dir := ""
	if !source.IsRemote(input) {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"."+lang+ext)
}
