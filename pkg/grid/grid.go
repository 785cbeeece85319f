// Package grid holds the in-memory spreadsheet model shared by ingestion,
// translation and export. A Grid is a rectangular view over the parsed
// rows: every row has exactly Columns cells, and each cell carries both the
// raw text it was parsed from and its normalized form.
package grid

import "strings"

// Cell is a single spreadsheet cell. Original preserves the text exactly as
// parsed; Cleaned is the normalized display text. The flags record what the
// original contained before normalization. A cell's position is its index
// in Grid.Rows and never moves.
type Cell struct {
	Original    string `json:"original"`
	Cleaned     string `json:"cleaned"`
	HasHTML     bool   `json:"has_html,omitempty"`
	HasEntities bool   `json:"has_entities,omitempty"`
}

// IsEmpty reports whether normalization left no visible content.
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.Cleaned) == ""
}

// Fingerprint identifies a cell's content for deduplication, rehydration
// and caching: the trimmed cleaned text. Position is deliberately not part
// of the key, so identical content anywhere in the grid shares one entry.
func Fingerprint(c Cell) string {
	return strings.TrimSpace(c.Cleaned)
}

// Display returns the text a consumer should show or export: the cleaned
// form when normalization produced anything, the original otherwise.
func (c Cell) Display() string {
	if c.Cleaned != "" {
		return c.Cleaned
	}
	return c.Original
}

// Grid is a parsed spreadsheet. Rows is rectangular: len(row) == Columns
// for every row.
type Grid struct {
	Sheet   string   `json:"sheet,omitempty"`
	Columns int      `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Shape returns the row and column counts.
func (g *Grid) Shape() (rows, cols int) {
	return len(g.Rows), g.Columns
}

// At returns the cell at (row, col), or a zero cell when the position is
// out of range. Callers iterating fixed column layouts over ragged input
// rely on this instead of bounds checks.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) {
		return Cell{}
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// SetCell replaces the cell at (row, col). Out-of-range positions are
// ignored.
func (g *Grid) SetCell(row, col int, c Cell) {
	if row < 0 || row >= len(g.Rows) {
		return
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return
	}
	r[col] = c
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Sheet:   g.Sheet,
		Columns: g.Columns,
		Rows:    make([][]Cell, len(g.Rows)),
	}
	for i, row := range g.Rows {
		out.Rows[i] = make([]Cell, len(row))
		copy(out.Rows[i], row)
	}
	return out
}

// Display returns the grid as plain rows of display text, the shape
// exporters and tests work with.
func (g *Grid) Display() [][]string {
	out := make([][]string, len(g.Rows))
	for i, row := range g.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.Display()
		}
	}
	return out
}
