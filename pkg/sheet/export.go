package sheet

import (
	"bytes"
	"encoding/csv"

	"github.com/xuri/excelize/v2"

	"github.com/gridglot/gridglot/pkg/grid"
)

// Export writes the grid as an xlsx workbook. Each cell carries its
// display text: the cleaned (or translated) form when present, the
// original otherwise.
func Export(g *grid.Grid) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := g.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	for i, row := range g.Rows {
		for j, c := range row {
			text := c.Display()
			if text == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, text); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCSV writes the grid as comma-separated text.
func ExportCSV(g *grid.Grid) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, row := range g.Display() {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
