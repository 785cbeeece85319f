package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type testReport struct {
	File string `json:"file" yaml:"file"`
	Rows int    `json:"rows" yaml:"rows"`
}

type stringerReport struct {
	Tier string
}

func (r stringerReport) String() string {
	return "tier: " + r.Tier
}

// --- NewWriter Factory Tests ---

func TestNewWriter_Formats(t *testing.T) {
	tests := []struct {
		format Format
		check  func(Writer) bool
	}{
		{FormatJSON, func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{FormatJSONL, func(w Writer) bool { _, ok := w.(*JSONLWriter); return ok }},
		{FormatYAML, func(w Writer) bool { _, ok := w.(*YAMLWriter); return ok }},
		{FormatText, func(w Writer) bool { _, ok := w.(*TextWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			buf := &bytes.Buffer{}
			w, err := NewWriter(buf, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}

			if !tt.check(w) {
				t.Errorf("NewWriter(%s) returned wrong writer type %T", tt.format, w)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	_, err := NewWriter(buf, Format("xml"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_SingleReportIsBareObject(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testReport{File: "quiz.xlsx", Rows: 120}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result testReport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if result.File != "quiz.xlsx" || result.Rows != 120 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_MultipleReportsAreArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.WriteAll([]any{
		testReport{File: "a.xlsx", Rows: 1},
		testReport{File: "b.xlsx", Rows: 2},
	}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testReport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(result))
	}
	if result[0].File != "a.xlsx" || result[1].File != "b.xlsx" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_PrettyAndCompact(t *testing.T) {
	pretty := &bytes.Buffer{}
	w := NewJSONWriter(pretty, true, "  ")
	if err := w.Write(testReport{File: "x", Rows: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  ") {
		t.Errorf("expected indentation in pretty output, got %q", pretty.String())
	}

	compact := &bytes.Buffer{}
	w = NewJSONWriter(compact, false, "")
	if err := w.Write(testReport{File: "x", Rows: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(compact.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected single line in compact output, got %d lines", len(lines))
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_OneLinePerReport(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll([]any{
		testReport{File: "a.xlsx", Rows: 1},
		testReport{File: "b.xlsx", Rows: 2},
		testReport{File: "c.xlsx", Rows: 3},
	}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}

	for i, line := range lines {
		var item testReport
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONLWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_SingleReport(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write(testReport{File: "quiz.xlsx", Rows: 7}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result testReport
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if result.File != "quiz.xlsx" || result.Rows != 7 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestYAMLWriter_MultipleReports(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write(testReport{File: "a", Rows: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(testReport{File: "b", Rows: 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []testReport
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(result))
	}
}

// --- TextWriter Tests ---

func TestTextWriter_UsesStringer(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	if err := w.Write(stringerReport{Tier: "good"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "tier: good" {
		t.Errorf("expected stringer output, got %q", got)
	}
}

func TestTextWriter_FallsBackToJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	if err := w.Write(testReport{File: "quiz.xlsx", Rows: 9}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var result testReport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("fallback output is not valid JSON: %v", err)
	}
	if result.Rows != 9 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestTextWriter_WriteAllSeparatesReports(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	if err := w.WriteAll([]any{
		stringerReport{Tier: "good"},
		stringerReport{Tier: "poor"},
	}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	if !strings.Contains(buf.String(), "tier: good\n\ntier: poor") {
		t.Errorf("expected blank-line separated reports, got %q", buf.String())
	}
}

// --- Option Tests ---

func TestWriterOptions(t *testing.T) {
	cfg := &writerConfig{pretty: true, indent: "  "}
	WithPretty(false)(cfg)
	WithIndent("\t")(cfg)

	if cfg.pretty {
		t.Error("WithPretty(false) did not unset pretty")
	}
	if cfg.indent != "\t" {
		t.Errorf("expected indent '\\t', got %q", cfg.indent)
	}
}
