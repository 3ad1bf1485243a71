package tabclean

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef represents a single cell position within a workbook.
type CellRef struct {
	Sheet string // sheet name (empty = no sheet context)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5", or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}

	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(cellPart, "$", ""))
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Sheet: sheet, Row: row - 1, Col: col - 1}, nil
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	name := c.CellName()
	if c.Sheet != "" {
		return c.Sheet + "!" + name
	}
	return name
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row+1, c.Col+1)
	}
	return name
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA"
func ColToName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// SafeSheetName sanitizes a string for use as an Excel sheet name.
// Forbidden characters ([]*?/\:) are dropped, spaces become underscores and
// the result is truncated to 31 characters.
func SafeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '[', ']':
			continue
		case ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
