package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// TextWriter renders reports for humans. Reports that implement
// fmt.Stringer are written verbatim; anything else falls back to
// indented JSON so nothing is ever silently dropped.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single report.
func (w *TextWriter) Write(data any) error {
	if s, ok := data.(fmt.Stringer); ok {
		if _, err := w.w.WriteString(s.String()); err != nil {
			return err
		}
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
		return w.w.Flush()
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple reports separated by blank lines.
func (w *TextWriter) WriteAll(data []any) error {
	for i, item := range data {
		if i > 0 {
			if _, err := w.w.WriteString("\n"); err != nil {
				return err
			}
		}
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
