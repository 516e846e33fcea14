package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadSpreadsheet parses a binary spreadsheet through its native sheet model
// into a row-major grid of stringified cells. Only the first sheet is read
// and fully empty rows are skipped.
func ReadSpreadsheet(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	var cells [][]string
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		cells = append(cells, row)
	}

	return buildGrid(cells)
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
