package tabclean

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CellKind represents the type of data held by a cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindBool
	KindFormula
)

// String returns a human-readable name for the CellKind.
func (k CellKind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindText:
		return "Text"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindFormula:
		return "Formula"
	default:
		return "Unknown"
	}
}

// Cell is a single typed grid value.
type Cell struct {
	Kind    CellKind
	Value   any    // string for text, float64 for numbers, bool, or the cached formula result
	Formula string // formula text as stored by the source (excelize omits the leading '=')
}

// Text creates a text cell. An empty string yields an empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Value: s}
}

// Number creates a numeric cell.
func Number(v float64) Cell {
	return Cell{Kind: KindNumber, Value: v}
}

// Bool creates a boolean cell.
func Bool(v bool) Cell {
	return Cell{Kind: KindBool, Value: v}
}

// Formula creates a formula cell.
func Formula(f string) Cell {
	return Cell{Kind: KindFormula, Formula: f}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// String renders the cell value the way it is written to delimited output.
func (c Cell) String() string {
	switch c.Kind {
	case KindEmpty:
		return ""
	case KindFormula:
		return "=" + c.Formula
	case KindNumber:
		if f, ok := c.Value.(float64); ok {
			return formatNumber(f)
		}
	}
	return fmt.Sprintf("%v", c.Value)
}

// Grid is a sparse two-dimensional view of one sheet.
// Rows and columns are 0-based. Extents grow on Set and shrink only through
// DeleteRows / DeleteCols.
type Grid struct {
	rows  int
	cols  int
	cells map[int]map[int]Cell // row → col → cell
}

// NewGrid creates an empty grid with the given extents.
func NewGrid(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{rows: rows, cols: cols, cells: make(map[int]map[int]Cell)}
}

// GridFromRows builds a grid from a dense row slice. Nil values are empty cells,
// strings become text, numeric values become numbers, strings starting with '='
// become formulas.
func GridFromRows(rows [][]any) *Grid {
	g := NewGrid(len(rows), 0)
	for r, row := range rows {
		for c, v := range row {
			g.Set(r, c, cellOf(v))
		}
	}
	return g
}

func cellOf(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		if strings.HasPrefix(x, "=") && len(x) > 1 {
			return Formula(x[1:])
		}
		return Text(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}

// Rows returns the row extent.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the column extent.
func (g *Grid) Cols() int { return g.cols }

// Malformed reports whether the grid has zero rows or zero columns.
func (g *Grid) Malformed() bool {
	return g == nil || g.rows == 0 || g.cols == 0
}

// Get returns the cell at (row, col). Out-of-range positions are empty.
func (g *Grid) Get(row, col int) Cell {
	rd, ok := g.cells[row]
	if !ok {
		return Cell{}
	}
	return rd[col]
}

// Set stores a cell, growing the extents as needed. Setting an empty cell
// removes the stored value but keeps the extents.
func (g *Grid) Set(row, col int, c Cell) {
	if row < 0 || col < 0 {
		return
	}
	if row >= g.rows {
		g.rows = row + 1
	}
	if col >= g.cols {
		g.cols = col + 1
	}
	if c.IsEmpty() {
		if rd, ok := g.cells[row]; ok {
			delete(rd, col)
			if len(rd) == 0 {
				delete(g.cells, row)
			}
		}
		return
	}
	rd, ok := g.cells[row]
	if !ok {
		rd = make(map[int]Cell)
		g.cells[row] = rd
	}
	rd[col] = c
}

// IsEmpty reports whether the cell at (row, col) is empty.
func (g *Grid) IsEmpty(row, col int) bool {
	return g.Get(row, col).IsEmpty()
}

// RowEmpty reports whether every cell of the row is empty.
func (g *Grid) RowEmpty(row int) bool {
	return len(g.cells[row]) == 0
}

// ColEmpty reports whether every cell of the column is empty.
func (g *Grid) ColEmpty(col int) bool {
	for _, rd := range g.cells {
		if _, ok := rd[col]; ok {
			return false
		}
	}
	return true
}

// Occupancy returns a same-shaped mask, true where the cell is non-empty.
// The mask is indexed [row][col].
func (g *Grid) Occupancy() [][]bool {
	mask := make([][]bool, g.rows)
	for r := range mask {
		mask[r] = make([]bool, g.cols)
	}
	for r, rd := range g.cells {
		for c := range rd {
			mask[r][c] = true
		}
	}
	return mask
}

// Row returns a dense copy of one row.
func (g *Grid) Row(row int) []Cell {
	out := make([]Cell, g.cols)
	for c, cell := range g.cells[row] {
		out[c] = cell
	}
	return out
}

// Slice copies the inclusive rectangle into a new grid anchored at (0, 0).
func (g *Grid) Slice(rowMin, rowMax, colMin, colMax int) *Grid {
	out := NewGrid(rowMax-rowMin+1, colMax-colMin+1)
	for r, rd := range g.cells {
		if r < rowMin || r > rowMax {
			continue
		}
		for c, cell := range rd {
			if c < colMin || c > colMax {
				continue
			}
			out.Set(r-rowMin, c-colMin, cell)
		}
	}
	return out
}

// DeleteRows removes the first n rows, shifting remaining cells up.
func (g *Grid) DeleteRows(n int) {
	if n <= 0 {
		return
	}
	if n > g.rows {
		n = g.rows
	}
	shifted := make(map[int]map[int]Cell, len(g.cells))
	for r, rd := range g.cells {
		if r >= n {
			shifted[r-n] = rd
		}
	}
	g.cells = shifted
	g.rows -= n
}

// DeleteCols removes the first n columns, shifting remaining cells left.
func (g *Grid) DeleteCols(n int) {
	if n <= 0 {
		return
	}
	if n > g.cols {
		n = g.cols
	}
	for r, rd := range g.cells {
		shifted := make(map[int]Cell, len(rd))
		for c, cell := range rd {
			if c >= n {
				shifted[c-n] = cell
			}
		}
		if len(shifted) == 0 {
			delete(g.cells, r)
			continue
		}
		g.cells[r] = shifted
	}
	g.cols -= n
}

// StripText trims surrounding whitespace from text cells at or below fromRow
// and at or right of fromCol. Cells trimmed to nothing become empty.
// It returns the number of cells changed.
func (g *Grid) StripText(fromRow, fromCol int) int {
	changed := 0
	for _, pos := range g.positions() {
		r, c := pos[0], pos[1]
		if r < fromRow || c < fromCol {
			continue
		}
		cell := g.Get(r, c)
		s, ok := cell.Value.(string)
		if cell.Kind != KindText || !ok {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != s {
			g.Set(r, c, Text(trimmed))
			changed++
		}
	}
	return changed
}

// UnstrippedCells lists text cells with leading or trailing whitespace at or
// below fromRow and at or right of fromCol, in row-major order.
func (g *Grid) UnstrippedCells(fromRow, fromCol int) [][2]int {
	var out [][2]int
	for _, pos := range g.positions() {
		if pos[0] < fromRow || pos[1] < fromCol {
			continue
		}
		cell := g.Get(pos[0], pos[1])
		if s, ok := cell.Value.(string); ok && cell.Kind == KindText && strings.TrimSpace(s) != s {
			out = append(out, pos)
		}
	}
	return out
}

// FormulaCells returns the positions of all formula cells in row-major order.
func (g *Grid) FormulaCells() [][2]int {
	var out [][2]int
	for _, pos := range g.positions() {
		if g.Get(pos[0], pos[1]).Kind == KindFormula {
			out = append(out, pos)
		}
	}
	return out
}

// SetFormula replaces the formula text of a formula cell.
func (g *Grid) SetFormula(row, col int, formula string) {
	cell := g.Get(row, col)
	if cell.Kind != KindFormula {
		return
	}
	cell.Formula = formula
	g.Set(row, col, cell)
}

// positions returns every stored position in row-major order.
func (g *Grid) positions() [][2]int {
	if g == nil {
		return nil
	}
	out := make([][2]int, 0, len(g.cells))
	for r, rd := range g.cells {
		for c := range rd {
			out = append(out, [2]int{r, c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Dense returns the grid as a row slice of cells.
func (g *Grid) Dense() [][]Cell {
	if g == nil {
		return nil
	}
	out := make([][]Cell, g.rows)
	for r := range out {
		out[r] = g.Row(r)
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
