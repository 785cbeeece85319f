package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gridglot/gridglot/internal/logger"
)

func parseXLSX(data []byte, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	name := sheet
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, "", errors.New("workbook has no sheets")
		}
		name = list[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, "", fmt.Errorf("sheet %q: %w", name, err)
	}

	fillMergedCells(f, name, rows)

	return rows, name, nil
}

// fillMergedCells copies each merged range's value into every cell the
// range spans. GetRows reports the value only in the top-left cell, which
// would leave the rest of the range looking blank.
func fillMergedCells(f *excelize.File, sheet string, rows [][]string) {
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		logger.Debug("skipping merged cell fill", "sheet", sheet, "error", err)
		return
	}

	for _, merge := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			continue
		}

		val := merge.GetCellValue()
		for r := startRow - 1; r <= endRow-1 && r < len(rows); r++ {
			for c := startCol - 1; c <= endCol-1; c++ {
				if c >= len(rows[r]) {
					rows[r] = append(rows[r], make([]string, c+1-len(rows[r]))...)
				}
				rows[r][c] = val
			}
		}
	}
}
