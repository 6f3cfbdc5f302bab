package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FlattenXlsxToText reads an uploaded .xlsx estimate export and flattens its
// first sheet to plain text, one row per line with cells joined by single
// spaces. The flattened text goes through the same parser as pasted text;
// no cell-level interpretation happens here.
func FlattenXlsxToText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrorEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("unable to read sheet: %v", err)
	}

	var b strings.Builder
	wrote := false
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) == 0 {
			continue
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
		wrote = true
	}
	if !wrote {
		return "", ErrorEmptyWorkbook
	}
	return b.String(), nil
}
