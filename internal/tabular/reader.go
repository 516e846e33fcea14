// Package tabular turns uploaded statement files (delimited text or XLSX
// spreadsheets) into a header row plus a grid of string cells.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// PreviewRows is how many data rows the preview subset carries.
const PreviewRows = 5

// ErrEmptyFile is returned when the uploaded file contains no rows at all.
// It aborts the whole import attempt; no partial state is committed.
var ErrEmptyFile = errors.New("file is empty")

// Grid is the uniform result of reading any supported file format. The first
// file row is always treated as the header row.
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Preview [][]string `json:"preview"`
}

// Read dispatches on the file extension: .xlsx/.xls go through the
// spreadsheet reader, everything else is treated as delimited text.
func Read(filename string, r io.Reader, delimiter string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return ReadSpreadsheet(r)
	default:
		return ReadDelimited(r, delimiter)
	}
}

// ReadDelimited parses delimiter-separated text. Bank exports are frequently
// not UTF-8, so input that fails UTF-8 validation is decoded as Windows-1252.
// Quote handling is deliberately naive: only leading and trailing quote
// characters are stripped, delimiters embedded inside quoted fields are not
// supported.
func ReadDelimited(r io.Reader, delimiter string) (*Grid, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading delimited file: %w", err)
	}

	text := string(raw)
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding delimited file: %w", err)
		}
		text = string(decoded)
	}

	if delimiter == "" {
		delimiter = ","
	}

	var cells [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = stripQuotes(strings.TrimSpace(f))
		}
		cells = append(cells, row)
	}

	return buildGrid(cells)
}

func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

func buildGrid(cells [][]string) (*Grid, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyFile
	}
	g := &Grid{
		Headers: cells[0],
		Rows:    cells[1:],
	}
	n := len(g.Rows)
	if n > PreviewRows {
		n = PreviewRows
	}
	g.Preview = g.Rows[:n]
	return g, nil
}
