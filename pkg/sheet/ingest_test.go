package sheet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/gridglot/gridglot/pkg/cache"
	"github.com/gridglot/gridglot/pkg/normalize"
)

// --- Format Detection Tests ---

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"xlsx magic", []byte("PK\x03\x04rest"), FormatXLSX},
		{"html document", []byte("<!DOCTYPE html><html><body><table></table></body></html>"), FormatHTML},
		{"bare table", []byte("  <table><tr><td>x</td></tr></table>"), FormatHTML},
		{"csv", []byte("a,b,c\n1,2,3\n"), FormatCSV},
		{"tsv", []byte("a\tb\tc\n"), FormatCSV},
		{"empty", []byte{}, FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Ingest Tests ---

func TestIngest_CSV(t *testing.T) {
	data := []byte("Question,Answer\n&#1057;&#1077;&#1090;&#1082;&#1072;,<b>Grid</b>\n")

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	rows, cols := g.Shape()
	if rows != 2 || cols != 2 {
		t.Fatalf("Shape() = %dx%d, want 2x2", rows, cols)
	}

	if got := g.At(1, 0).Cleaned; got != "Сетка" {
		t.Errorf("cell (1,0) cleaned = %q, want Сетка", got)
	}
	if c := g.At(1, 1); c.Cleaned != "Grid" || !c.HasHTML {
		t.Errorf("cell (1,1) = %+v, want cleaned Grid with HasHTML", c)
	}
	if got := g.At(1, 1).Original; got != "<b>Grid</b>" {
		t.Errorf("cell (1,1) original = %q, want markup preserved", got)
	}
}

func TestIngest_TrimsDeclaredColumns(t *testing.T) {
	// 20 declared columns, data only in the first 11.
	var b strings.Builder
	for r := 0; r < 5; r++ {
		fields := make([]string, 20)
		for c := 0; c <= 10; c++ {
			fields[c] = "x"
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}

	g, err := Ingest(context.Background(), []byte(b.String()))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if _, cols := g.Shape(); cols != 11 {
		t.Errorf("columns = %d, want 11", cols)
	}
}

func TestIngest_DropsBlankRows(t *testing.T) {
	data := []byte("a,b\n,\n  ,  \nc,d\n")

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	rows, _ := g.Shape()
	if rows != 2 {
		t.Errorf("rows = %d, want 2 (blank rows dropped)", rows)
	}
	if got := g.At(1, 0).Cleaned; got != "c" {
		t.Errorf("cell (1,0) = %q, want c", got)
	}
}

func TestIngest_PadsShortRows(t *testing.T) {
	data := []byte("a,b,c\nd\n")

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	rows, cols := g.Shape()
	if rows != 2 || cols != 3 {
		t.Fatalf("Shape() = %dx%d, want 2x3", rows, cols)
	}
	if len(g.Rows[1]) != 3 {
		t.Errorf("short row not padded: len = %d", len(g.Rows[1]))
	}
	if got := g.At(1, 2); got.Original != "" || got.Cleaned != "" {
		t.Errorf("padding cell not empty: %+v", got)
	}
}

func TestIngest_SemicolonDelimiter(t *testing.T) {
	data := []byte("a;b;c\n1;2;3\n")

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if _, cols := g.Shape(); cols != 3 {
		t.Errorf("columns = %d, want 3 (semicolon not sniffed)", cols)
	}
}

func TestIngest_TabDelimiter(t *testing.T) {
	data := []byte("a\tb\tc\n1\t2\t3\n")

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if _, cols := g.Shape(); cols != 3 {
		t.Errorf("columns = %d, want 3 (tab not sniffed)", cols)
	}
}

func TestIngest_HTMLTable(t *testing.T) {
	data := []byte(`<html><body>
<table>
  <tr><th>Question</th><th>Answer</th></tr>
  <tr><td>&amp;#1057;&amp;#1077;&amp;#1090;&amp;#1082;&amp;#1072;</td><td>Grid</td></tr>
</table>
</body></html>`)

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	rows, cols := g.Shape()
	if rows != 2 || cols != 2 {
		t.Fatalf("Shape() = %dx%d, want 2x2", rows, cols)
	}

	// The HTML parser decodes one level; normalization handles the rest.
	if got := g.At(1, 0).Cleaned; got != "Сетка" {
		t.Errorf("cell (1,0) cleaned = %q, want Сетка", got)
	}
}

func TestIngest_HTMLWithoutTable(t *testing.T) {
	data := []byte("<html><body><p>no table here</p></body></html>")

	_, err := Ingest(context.Background(), data)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Format != FormatHTML {
		t.Errorf("ParseError.Format = %v, want html", pe.Format)
	}
}

func TestIngest_EmptyInput(t *testing.T) {
	var pe *ParseError
	if _, err := Ingest(context.Background(), nil); !errors.As(err, &pe) {
		t.Errorf("expected *ParseError for nil input, got %v", err)
	}
	if _, err := Ingest(context.Background(), []byte("   \n  ")); !errors.As(err, &pe) {
		t.Errorf("expected *ParseError for whitespace input, got %v", err)
	}
}

func TestIngest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Ingest(ctx, []byte("a,b\nc,d\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIngest_ProgressPerChunk(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 250; i++ {
		b.WriteString("cell\n")
	}

	var calls [][2]int
	_, err := Ingest(context.Background(), []byte(b.String()),
		WithChunkSize(100),
		WithProgress(func(done, total int) {
			calls = append(calls, [2]int{done, total})
		}))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	want := [][2]int{{100, 250}, {200, 250}, {250, 250}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestIngest_WithMemo(t *testing.T) {
	memo, err := cache.New[string, normalize.Result](16)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	data := []byte("&#1044;&#1072;,&#1044;&#1072;\n&#1044;&#1072;,x\n")

	g, err := Ingest(context.Background(), data, WithMemo(memo))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	for _, pos := range [][2]int{{0, 0}, {0, 1}, {1, 0}} {
		if got := g.At(pos[0], pos[1]).Cleaned; got != "Да" {
			t.Errorf("cell %v = %q, want Да", pos, got)
		}
	}

	stats := memo.Stats()
	if stats.Hits == 0 {
		t.Errorf("expected memo hits for repeated cell, got %+v", stats)
	}
}

// --- XLSX Tests ---

func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range cells {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", cell, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func TestIngest_XLSX(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "Question",
		"B1": "Answer",
		"A2": "&#1057;&#1077;&#1090;&#1082;&#1072;",
		"B2": "<b>Grid</b>",
	})

	g, err := Ingest(context.Background(), data)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if g.Sheet != "Sheet1" {
		t.Errorf("Sheet = %q, want Sheet1", g.Sheet)
	}
	rows, cols := g.Shape()
	if rows != 2 || cols != 2 {
		t.Fatalf("Shape() = %dx%d, want 2x2", rows, cols)
	}
	if got := g.At(1, 0).Cleaned; got != "Сетка" {
		t.Errorf("cell (1,0) cleaned = %q, want Сетка", got)
	}
}

func TestIngest_XLSXNamedSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("NewSheet() error = %v", err)
	}
	if err := f.SetCellValue("Data", "A1", "from second sheet"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	g, err := Ingest(context.Background(), buf.Bytes(), WithSheet("Data"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if got := g.At(0, 0).Cleaned; got != "from second sheet" {
		t.Errorf("cell (0,0) = %q, want from second sheet", got)
	}
	if g.Sheet != "Data" {
		t.Errorf("Sheet = %q, want Data", g.Sheet)
	}
}

func TestIngest_XLSXMergedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "merged"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := f.MergeCell("Sheet1", "A1", "C1"); err != nil {
		t.Fatalf("MergeCell() error = %v", err)
	}
	if err := f.SetCellValue("Sheet1", "C2", "anchor"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	g, err := Ingest(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	for col := 0; col < 3; col++ {
		if got := g.At(0, col).Cleaned; got != "merged" {
			t.Errorf("cell (0,%d) = %q, want merged range value", col, got)
		}
	}
}

func TestIngest_XLSXUnknownSheet(t *testing.T) {
	data := buildWorkbook(t, map[string]string{"A1": "x"})

	_, err := Ingest(context.Background(), data, WithSheet("Nope"))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError for unknown sheet, got %v", err)
	}
	if pe.Format != FormatXLSX {
		t.Errorf("ParseError.Format = %v, want xlsx", pe.Format)
	}
}
