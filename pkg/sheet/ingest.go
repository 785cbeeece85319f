package sheet

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/gridglot/gridglot/internal/logger"
	"github.com/gridglot/gridglot/pkg/grid"
	"github.com/gridglot/gridglot/pkg/normalize"
)

var (
	xlsxMagic = []byte("PK\x03\x04")

	htmlMarkers = []string{"<table", "<html", "<!doctype"}
)

// DetectFormat sniffs the source format from the content. Declared file
// extensions lie often enough that they are never consulted.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, xlsxMagic) {
		return FormatXLSX
	}

	head := strings.ToLower(string(data[:min(len(data), 1024)]))
	for _, marker := range htmlMarkers {
		if strings.Contains(head, marker) {
			return FormatHTML
		}
	}

	return FormatCSV
}

// Ingest parses spreadsheet bytes into a grid. The returned error is a
// *ParseError for unusable input, or the context error when cancelled
// mid-materialization.
func Ingest(ctx context.Context, data []byte, opts ...Option) (*grid.Grid, error) {
	o := applyOptions(opts)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Format: FormatCSV, Err: errors.New("empty input")}
	}

	format := DetectFormat(data)

	var (
		raw   [][]string
		sheet string
		err   error
	)
	switch format {
	case FormatXLSX:
		raw, sheet, err = parseXLSX(data, o.Sheet)
	case FormatHTML:
		raw, err = parseHTML(data)
	default:
		raw, err = parseCSV(data)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}

	g, err := materialize(ctx, raw, o)
	if err != nil {
		return nil, err
	}
	g.Sheet = sheet

	rows, cols := g.Shape()
	logger.Debug("ingested grid",
		"format", format,
		"raw_rows", len(raw),
		"rows", rows,
		"columns", cols)

	return g, nil
}

// materialize turns raw jagged rows into a rectangular normalized grid.
//
// The effective width is the maximum over all rows of the last non-blank
// cell's index plus one; trailing declared-but-empty columns vanish here.
// Rows whose every cell is blank are dropped. Work proceeds in chunks so
// large sheets stay cancellable and can report progress.
func materialize(ctx context.Context, raw [][]string, o *Options) (*grid.Grid, error) {
	width := effectiveWidth(raw)

	g := &grid.Grid{
		Columns: width,
		Rows:    make([][]grid.Cell, 0, len(raw)),
	}

	total := len(raw)
	for start := 0; start < total; start += o.ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+o.ChunkSize, total)
		for _, rawRow := range raw[start:end] {
			cells, blank := o.buildRow(rawRow, width)
			if blank {
				continue
			}
			g.Rows = append(g.Rows, cells)
		}

		if o.Progress != nil {
			o.Progress(end, total)
		}
	}

	return g, nil
}

func effectiveWidth(raw [][]string) int {
	width := 0
	for _, row := range raw {
		for j := len(row) - 1; j >= 0; j-- {
			if strings.TrimSpace(row[j]) == "" {
				continue
			}
			if j+1 > width {
				width = j + 1
			}
			break
		}
	}
	return width
}

func (o *Options) buildRow(rawRow []string, width int) ([]grid.Cell, bool) {
	cells := make([]grid.Cell, width)
	blank := true

	for j := 0; j < width && j < len(rawRow); j++ {
		rawCell := rawRow[j]
		if strings.TrimSpace(rawCell) == "" {
			continue
		}
		blank = false

		res, ok := o.memoized(rawCell)
		if !ok {
			res = normalize.Normalize(rawCell)
			o.remember(rawCell, res)
		}

		cells[j] = grid.Cell{
			Original:    rawCell,
			Cleaned:     res.Cleaned,
			HasHTML:     res.HasHTML,
			HasEntities: res.HasEntities,
		}
	}

	return cells, blank
}

func (o *Options) memoized(raw string) (normalize.Result, bool) {
	if o.memo == nil {
		return normalize.Result{}, false
	}
	return o.memo.Get(raw)
}

func (o *Options) remember(raw string, res normalize.Result) {
	if o.memo != nil {
		o.memo.Set(raw, res)
	}
}
