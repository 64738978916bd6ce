// Package extract flattens spreadsheet and word-processor documents into
// line-oriented text for the extraction prompt: spreadsheet cells joined
// by tabs, rows and paragraphs joined by newlines.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelanni/grader/internal/model"

	"github.com/tealeg/xlsx/v2"
)

// ReadToText reads a source document and returns its flattened text.
// The format is picked by file extension; unrecognized extensions return
// ErrUnsupportedFormat.
func ReadToText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return readSpreadsheet(path)
	case ".docx", ".doc":
		return readDocument(path)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%s: %w", path, model.ErrUnsupportedFormat)
	}
}

// readSpreadsheet flattens the first sheet: non-empty cells of each row
// joined by tabs, empty rows dropped.
func readSpreadsheet(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	if len(f.Sheets) == 0 {
		return "", fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	var lines []string
	for _, row := range f.Sheets[0].Rows {
		var vals []string
		for _, cell := range row.Cells {
			if v := cell.String(); v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			lines = append(lines, strings.Join(vals, "\t"))
		}
	}
	return strings.Join(lines, "\n"), nil
}
