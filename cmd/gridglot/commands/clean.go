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
	"github.com/gridglot/gridglot/internal/source"
	"github.com/gridglot/gridglot/pkg/sheet"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file-or-url]",
	Short: "Clean a spreadsheet without translating",
	Long: `Clean strips HTML markup, decodes entities and repairs mojibake in
every cell, then writes the spreadsheet back out unchanged otherwise.
No provider or API key is needed.

Examples:
  gridglot clean export.xlsx -o export.clean.xlsx

  # Convert to CSV while cleaning
  gridglot clean export.xlsx -o export.csv --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringP("output", "o", "", "output file (default: input name with .clean suffix)")
	cleanCmd.Flags().StringP("format", "f", "", "output format: xlsx or csv (default: from output extension)")
	cleanCmd.Flags().String("sheet", "", "sheet to process (xlsx only, default: first sheet)")
	cleanCmd.Flags().String("max-size", "50MB", "maximum input size (e.g. 10MB, 1GB)")
}

func runClean(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input := args[0]
	sheetName, _ := cmd.Flags().GetString("sheet")

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
		outPath = deriveOutputPath(input, "clean", format)
	}

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

	g, err := sheet.Ingest(ctx, data, ingestOpts...)
	if err != nil {
		logError("failed to parse input: %v", err)
		return err
	}

	var out []byte
	switch format {
	case "csv":
		out, err = sheet.ExportCSV(g)
	default:
		out, err = sheet.Export(g)
	}
	if err != nil {
		logError("failed to export: %v", err)
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		logError("failed to write %s: %v", outPath, err)
		return err
	}

	rows, cols := g.Shape()
	logInfo("Cleaned %d rows x %d columns, wrote %s (%s)", rows, cols, outPath, humanize.Bytes(uint64(len(out))))
	return nil
}
