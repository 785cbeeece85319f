package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/internal/output"
	"github.com/gridglot/gridglot/internal/source"
	"github.com/gridglot/gridglot/pkg/quality"
	"github.com/gridglot/gridglot/pkg/sheet"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file-or-url]",
	Short: "Check dataset quality without calling an LLM",
	Long: `Analyze scans a spreadsheet for structural problems: empty content,
missing answer variants, broken correctness codes and duplicates. The
checks are purely statistical, so no provider or API key is needed.

Examples:
  # Human-readable report
  gridglot analyze quiz.xlsx

  # JSON report for CI
  gridglot analyze quiz.xlsx --format json -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	analyzeCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().String("sheet", "", "sheet to process (xlsx only, default: first sheet)")
	analyzeCmd.Flags().String("max-size", "50MB", "maximum input size (e.g. 10MB, 1GB)")
	analyzeCmd.Flags().Bool("fail-on-poor", false, "exit with an error when the dataset tier is poor")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input := args[0]
	sheetName, _ := cmd.Flags().GetString("sheet")
	outFile, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	failOnPoor, _ := cmd.Flags().GetBool("fail-on-poor")

	maxSizeStr, _ := cmd.Flags().GetString("max-size")
	maxSize, err := humanize.ParseBytes(maxSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --max-size value %q: %w", maxSizeStr, err)
	}

	data, err := source.Load(ctx, input, source.Options{
		MaxSize: int64(maxSize),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		logError("failed to load input: %v", err)
		return err
	}

	ingestOpts := []sheet.Option{}
	if sheetName != "" {
		ingestOpts = append(ingestOpts, sheet.WithSheet(sheetName))
	}
	g, err := sheet.Ingest(ctx, data, ingestOpts...)
	if err != nil {
		logError("failed to parse input: %v", err)
		return err
	}

	report := quality.Analyze(g)

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			logError("failed to create output file: %v", err)
			return err
		}
		defer f.Close()
		out = f
	}

	w, err := output.NewWriter(out, output.Format(formatStr))
	if err != nil {
		logError("%v", err)
		return err
	}
	defer w.Close()

	if err := w.Write(report); err != nil {
		logError("failed to write report: %v", err)
		return err
	}

	if failOnPoor && report.Tier == quality.TierPoor {
		return fmt.Errorf("dataset quality is poor (%d issues across %d records)",
			report.TotalIssues, report.Records)
	}
	return nil
}
