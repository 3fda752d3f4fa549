// Package dataflow loads the sales dataset and runs chart transform
// pipelines over it in Go, the same way the browser renderer would.
package dataflow

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/junkd0g/vgcharts/internal/expr"
)

// ErrUnsupportedFormat is returned for dataset files that are neither CSV
// nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Row is one dataset record.
type Row = expr.Row

// Load reads a dataset, choosing the parser by file extension.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV parses a CSV with a header row.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to read CSV headers: empty input")
	}
	return buildRows(records[0], records[1:]), nil
}

// ReadXLSX parses the first sheet of a workbook; the first row is the header.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return buildRows(records[0], records[1:]), nil
}

// buildRows infers column types the way the renderer does: a column whose
// non-missing cells all parse as numbers is numeric. Missing cells ("",
// "N/A", "NA") become nil.
func buildRows(header []string, records [][]string) []Row {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	numeric := make([]bool, len(names))
	for col := range names {
		numeric[col] = true
		for _, rec := range records {
			cell := cellAt(rec, col)
			if isMissing(cell) {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric[col] = false
				break
			}
		}
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(names))
		for col, name := range names {
			if name == "" {
				continue
			}
			cell := cellAt(rec, col)
			switch {
			case isMissing(cell):
				row[name] = nil
			case numeric[col]:
				v, _ := strconv.ParseFloat(cell, 64)
				row[name] = v
			default:
				row[name] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func cellAt(rec []string, col int) string {
	if col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

func isMissing(cell string) bool {
	switch cell {
	case "", "N/A", "NA":
		return true
	}
	return false
}
