// Package sheet ingests spreadsheet bytes into a grid and exports grids
// back out. Three source formats are supported: xlsx workbooks, delimited
// text (comma, semicolon or tab) and HTML tables; the format is sniffed
// from the bytes, never from a file name.
//
// Ingestion is two-phase. The format parser produces raw jagged rows and
// nothing else; materialization then derives the effective column count,
// drops all-blank rows, pads the rest and normalizes every cell. Keeping
// the phases separate means format parsers stay trivial and the shaping
// rules are applied identically regardless of source.
package sheet

import (
	"fmt"

	"github.com/gridglot/gridglot/pkg/cache"
	"github.com/gridglot/gridglot/pkg/normalize"
)

// Format identifies a source format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseError reports unusable input. It is the only fatal ingestion error
// besides context cancellation; anything recoverable is logged and worked
// around instead.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s input: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DefaultChunkSize is how many rows are materialized between cancellation
// checks and progress callbacks.
const DefaultChunkSize = 100

// Options configures ingestion.
type Options struct {
	// Sheet selects a workbook sheet by name. Empty means the first sheet.
	Sheet string

	// ChunkSize is the number of rows processed per chunk.
	ChunkSize int

	// Progress, when set, is called after each chunk with the number of
	// raw rows consumed so far and the total.
	Progress func(done, total int)

	memo *cache.Cache[string, normalize.Result]
}

// Option configures ingestion.
type Option func(*Options)

// WithSheet selects a workbook sheet by name.
func WithSheet(name string) Option {
	return func(o *Options) {
		o.Sheet = name
	}
}

// WithChunkSize sets the number of rows processed between cancellation
// checks. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ChunkSize = n
		}
	}
}

// WithProgress registers a per-chunk progress callback.
func WithProgress(fn func(done, total int)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithMemo reuses normalization results across cells through the given
// cache. Worth wiring up for grids with heavy cell repetition.
func WithMemo(c *cache.Cache[string, normalize.Result]) Option {
	return func(o *Options) {
		o.memo = c
	}
}

func applyOptions(opts []Option) *Options {
	o := &Options{ChunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
