// Package sheet flattens spreadsheet workbooks into the comma-separated
// text the borelog parser reads.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when the requested worksheet does not exist or the
// workbook has none.
var ErrNoSheet = errors.New("worksheet not found")

// zipMagic opens every OOXML workbook.
var zipMagic = []byte("PK\x03\x04")

// IsWorkbook reports whether an upload should be flattened before parsing,
// judged by file extension or, failing that, content.
func IsWorkbook(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	case ".csv", ".txt":
		return false
	}
	return bytes.HasPrefix(data, zipMagic)
}

// Flatten renders one worksheet as CSV text, one line per row. An empty
// sheet name selects the first sheet. Line breaks inside a cell become
// spaces so each row stays on one line.
func Flatten(r io.Reader, sheet string) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", ErrNoSheet
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrNoSheet, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		for i, cell := range row {
			row[i] = strings.Join(strings.Fields(cell), " ")
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	return buf.String(), nil
}
