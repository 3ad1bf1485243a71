package tabclean

import (
	"fmt"
	"strconv"
)

// Axis selects the separator direction for SplitByEmptySeparators.
type Axis int

const (
	// SplitColumns separates tables on fully-empty columns (tables side by side).
	SplitColumns Axis = iota
	// SplitRows separates tables on fully-empty rows (tables stacked).
	SplitRows
)

// String returns the axis name.
func (a Axis) String() string {
	if a == SplitRows {
		return "rows"
	}
	return "columns"
}

// Strategy selects a segmentation algorithm for SegmentTables.
type Strategy string

const (
	StrategyColumns   Strategy = "columns" // axis split on empty columns
	StrategyRows      Strategy = "rows"    // axis split on empty rows
	StrategyOccupancy Strategy = "all"     // bounding-box growth
	StrategyPairs     Strategy = "pairs"   // (X, Y) pairs of column-split blocks
)

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyColumns, StrategyRows, StrategyOccupancy, StrategyPairs:
		return Strategy(s), nil
	case "vsplit":
		return StrategyColumns, nil
	case "hsplit":
		return StrategyRows, nil
	}
	return "", fmt.Errorf("unknown strategy %q (must be columns, rows, all or pairs)", s)
}

// TableBlock is one logical table cut out of a larger grid.
type TableBlock struct {
	Key    string      // title, or 1-based position; empty when the grid holds a single table
	Title  string      // detected title, if any
	Index  int         // 1-based position among the blocks of the grid
	Header []string    // column headers, nil when no header row was found
	Rows   [][]Cell    // data rows, all Width() wide
	Box    BoundingBox // location within the source grid
}

// Width returns the number of columns.
func (t TableBlock) Width() int {
	if len(t.Header) > 0 {
		return len(t.Header)
	}
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return 0
}

// Grid renders the block back into a grid: header row first (when present),
// then the data rows.
func (t TableBlock) Grid() *Grid {
	g := NewGrid(0, t.Width())
	r := 0
	if t.Header != nil {
		for c, h := range t.Header {
			g.Set(r, c, Text(h))
		}
		r++
	}
	for _, row := range t.Rows {
		for c, cell := range row {
			g.Set(r, c, cell)
		}
		r++
	}
	if r > g.Rows() {
		g.rows = r
	}
	return g
}

// SegmentTables splits a grid into tables with the given strategy.
// A malformed grid yields no tables.
func SegmentTables(g *Grid, s Strategy) ([]TableBlock, error) {
	if g.Malformed() {
		return nil, nil
	}
	switch s {
	case StrategyColumns:
		return SplitByEmptySeparators(g, SplitColumns), nil
	case StrategyRows:
		return SplitByEmptySeparators(g, SplitRows), nil
	case StrategyOccupancy:
		return SegmentByOccupancy(g), nil
	case StrategyPairs:
		return SplitIntoPairs(g), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", s)
}

// span is a half-open index range [start, end).
type span struct{ start, end int }

// separatorSpans returns the non-empty blocks between fully-empty rows or columns.
func separatorSpans(g *Grid, axis Axis) []span {
	n := g.Cols()
	empty := g.ColEmpty
	if axis == SplitRows {
		n = g.Rows()
		empty = g.RowEmpty
	}
	var spans []span
	start := 0
	for i := 0; i <= n; i++ {
		if i < n && !empty(i) {
			continue
		}
		if i > start {
			spans = append(spans, span{start, i})
		}
		start = i + 1
	}
	return spans
}

// SplitByEmptySeparators cuts the grid on fully-empty columns (SplitColumns)
// or rows (SplitRows).
//
// Side-by-side blocks share the sheet's first row as their header row:
//
//   - no header cell populated: no header, key is the block position;
//   - only the first header cell populated: it is the title and key, the
//     second row becomes the header;
//   - otherwise the header cells are used verbatim.
//
// Stacked blocks follow the SegmentByOccupancy rules: a first row with a
// single populated cell is the title, then a row of text or blanks is the
// header; a numeric first row stays data.
func SplitByEmptySeparators(g *Grid, axis Axis) []TableBlock {
	if g.Malformed() {
		return nil
	}
	var blocks []TableBlock
	for _, s := range separatorSpans(g, axis) {
		box := BoundingBox{ColMin: s.start, ColMax: s.end - 1, RowMin: 0, RowMax: g.Rows() - 1}
		if axis == SplitRows {
			box = BoundingBox{ColMin: 0, ColMax: g.Cols() - 1, RowMin: s.start, RowMax: s.end - 1}
		}
		box = trimBox(g, box)
		if axis == SplitRows {
			blocks = append(blocks, headerByContent(g, box, len(blocks)+1))
			continue
		}
		blocks = append(blocks, headerByFirstRow(g, box, len(blocks)+1))
	}
	return blocks
}

// headerByFirstRow applies the axis-split header rules to one block.
func headerByFirstRow(g *Grid, box BoundingBox, index int) TableBlock {
	t := TableBlock{Index: index, Key: strconv.Itoa(index), Box: box}
	first := rowCells(g, box.RowMin, box)

	populated := 0
	for _, c := range first {
		if !c.IsEmpty() {
			populated++
		}
	}

	switch {
	case populated == 0:
		t.Rows = blockRows(g, box, box.RowMin+1)
	case populated == 1 && !first[0].IsEmpty():
		t.Title = first[0].String()
		t.Key = t.Title
		if box.RowMin+1 <= box.RowMax {
			t.Header = headerStrings(rowCells(g, box.RowMin+1, box))
		} else {
			t.Header = make([]string, box.Width())
		}
		t.Rows = blockRows(g, box, box.RowMin+2)
	default:
		t.Header = headerStrings(first)
		t.Rows = blockRows(g, box, box.RowMin+1)
	}
	return t
}

// SegmentByOccupancy finds tables by bounding-box growth over the occupancy
// mask. A grid holding a single box yields one block with an empty key whose
// first row is the header. Otherwise, per box: a first row with exactly one
// populated cell is the title (and key); then a first row made only of text
// or blanks is the header. Untitled boxes are keyed by position.
func SegmentByOccupancy(g *Grid) []TableBlock {
	if g.Malformed() {
		return nil
	}
	boxes := DetectBoxes(g.Occupancy())
	if len(boxes) == 0 {
		return nil
	}
	if len(boxes) == 1 {
		box := boxes[0]
		return []TableBlock{{
			Index:  1,
			Header: headerStrings(rowCells(g, box.RowMin, box)),
			Rows:   blockRows(g, box, box.RowMin+1),
			Box:    box,
		}}
	}

	blocks := make([]TableBlock, 0, len(boxes))
	for i, box := range boxes {
		blocks = append(blocks, headerByContent(g, box, i+1))
	}
	return blocks
}

// headerByContent applies the title / text-row header rules to one box.
func headerByContent(g *Grid, box BoundingBox, index int) TableBlock {
	t := TableBlock{Index: index, Key: strconv.Itoa(index), Box: box}
	start := box.RowMin

	first := rowCells(g, start, box)
	var title *Cell
	populated := 0
	for i := range first {
		if !first[i].IsEmpty() {
			populated++
			title = &first[i]
		}
	}
	if populated == 1 {
		t.Title = title.String()
		t.Key = t.Title
		start++
	}

	if start <= box.RowMax && textOnly(rowCells(g, start, box)) {
		t.Header = headerStrings(rowCells(g, start, box))
		start++
	}
	t.Rows = blockRows(g, box, start)
	return t
}

// SplitIntoPairs decomposes every column-split block into two-column (X, Y)
// tables, X being the block's first column. Headers are the original header
// cells; each pair is keyed by the 1-based grid column of Y.
func SplitIntoPairs(g *Grid) []TableBlock {
	if g.Malformed() {
		return nil
	}
	var pairs []TableBlock
	for _, s := range separatorSpans(g, SplitColumns) {
		if s.end-s.start < 2 {
			continue
		}
		x := s.start
		for y := s.start + 1; y < s.end; y++ {
			t := TableBlock{
				Index:  len(pairs) + 1,
				Key:    strconv.Itoa(y + 1),
				Header: []string{g.Get(0, x).String(), g.Get(0, y).String()},
				Box:    BoundingBox{ColMin: x, ColMax: y, RowMin: 0, RowMax: g.Rows() - 1},
			}
			last := 0
			for r := 1; r < g.Rows(); r++ {
				row := []Cell{g.Get(r, x), g.Get(r, y)}
				t.Rows = append(t.Rows, row)
				if !row[0].IsEmpty() || !row[1].IsEmpty() {
					last = len(t.Rows)
				}
			}
			t.Rows = t.Rows[:last]
			t.Box.RowMax = last
			pairs = append(pairs, t)
		}
	}
	return pairs
}

// EmptySeparators returns the fully-empty rows and columns lying strictly
// between occupied ones. Any result suggests the sheet holds several tables.
func EmptySeparators(g *Grid) (rows, cols []int) {
	if g.Malformed() {
		return nil, nil
	}
	rows = innerEmpty(g.Rows(), g.RowEmpty)
	cols = innerEmpty(g.Cols(), g.ColEmpty)
	return rows, cols
}

func innerEmpty(n int, empty func(int) bool) []int {
	first, last := -1, -1
	for i := 0; i < n; i++ {
		if !empty(i) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	var out []int
	for i := first + 1; first >= 0 && i < last; i++ {
		if empty(i) {
			out = append(out, i)
		}
	}
	return out
}

// trimBox shrinks trailing empty rows and columns off a box. The box keeps at
// least one row and one column.
func trimBox(g *Grid, b BoundingBox) BoundingBox {
	for b.RowMax > b.RowMin && rowCellsEmpty(g, b.RowMax, b.ColMin, b.ColMax) {
		b.RowMax--
	}
	for b.ColMax > b.ColMin && colCellsEmpty(g, b.ColMax, b.RowMin, b.RowMax) {
		b.ColMax--
	}
	return b
}

func rowCellsEmpty(g *Grid, row, colMin, colMax int) bool {
	for c := colMin; c <= colMax; c++ {
		if !g.IsEmpty(row, c) {
			return false
		}
	}
	return true
}

func colCellsEmpty(g *Grid, col, rowMin, rowMax int) bool {
	for r := rowMin; r <= rowMax; r++ {
		if !g.IsEmpty(r, col) {
			return false
		}
	}
	return true
}

// rowCells returns the cells of one grid row restricted to the box columns.
func rowCells(g *Grid, row int, b BoundingBox) []Cell {
	out := make([]Cell, b.Width())
	for c := b.ColMin; c <= b.ColMax; c++ {
		out[c-b.ColMin] = g.Get(row, c)
	}
	return out
}

// blockRows returns the box rows from `from` to the bottom edge.
func blockRows(g *Grid, b BoundingBox, from int) [][]Cell {
	var out [][]Cell
	for r := from; r <= b.RowMax; r++ {
		out = append(out, rowCells(g, r, b))
	}
	return out
}

func headerStrings(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

func textOnly(cells []Cell) bool {
	for _, c := range cells {
		if c.Kind != KindText && c.Kind != KindEmpty {
			return false
		}
	}
	return true
}
