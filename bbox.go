package tabclean

import "fmt"

// BoundingBox is an inclusive rectangle over a grid's occupancy mask.
type BoundingBox struct {
	ColMin, ColMax int
	RowMin, RowMax int
}

// String formats the box as an A1 range.
func (b BoundingBox) String() string {
	first := NewCellRef("", b.RowMin, b.ColMin)
	last := NewCellRef("", b.RowMax, b.ColMax)
	return fmt.Sprintf("%s:%s", first.CellName(), last.CellName())
}

// Width returns the number of columns covered.
func (b BoundingBox) Width() int { return b.ColMax - b.ColMin + 1 }

// Height returns the number of rows covered.
func (b BoundingBox) Height() int { return b.RowMax - b.RowMin + 1 }

// Contains reports whether (row, col) lies inside the box widened by margin
// cells on every side, clamped to a rows×cols grid.
func (b BoundingBox) Contains(row, col, margin, rows, cols int) bool {
	colMin := max(b.ColMin-margin, 0)
	rowMin := max(b.RowMin-margin, 0)
	colMax := min(b.ColMax+margin, cols-1)
	rowMax := min(b.RowMax+margin, rows-1)
	return colMin <= col && col <= colMax && rowMin <= row && row <= rowMax
}

// GrowBox expands a box seeded at (row, col) until no edge can move outward.
// Each iteration tries left, right, top and bottom in that order; an edge moves
// one step when the newly covered strip holds at least one occupied cell.
// mask is indexed [row][col].
func GrowBox(mask [][]bool, row, col int) BoundingBox {
	b := BoundingBox{ColMin: col, ColMax: col, RowMin: row, RowMax: row}
	rows := len(mask)
	if rows == 0 {
		return b
	}
	cols := len(mask[0])

	for {
		changed := false
		if b.ColMin-1 >= 0 && colOccupied(mask, b.ColMin-1, b.RowMin, b.RowMax) {
			b.ColMin--
			changed = true
		}
		if b.ColMax+1 < cols && colOccupied(mask, b.ColMax+1, b.RowMin, b.RowMax) {
			b.ColMax++
			changed = true
		}
		if b.RowMin-1 >= 0 && rowOccupied(mask, b.RowMin-1, b.ColMin, b.ColMax) {
			b.RowMin--
			changed = true
		}
		if b.RowMax+1 < rows && rowOccupied(mask, b.RowMax+1, b.ColMin, b.ColMax) {
			b.RowMax++
			changed = true
		}
		if !changed {
			return b
		}
	}
}

func colOccupied(mask [][]bool, col, rowMin, rowMax int) bool {
	for r := rowMin; r <= rowMax; r++ {
		if mask[r][col] {
			return true
		}
	}
	return false
}

func rowOccupied(mask [][]bool, row, colMin, colMax int) bool {
	for c := colMin; c <= colMax; c++ {
		if mask[row][c] {
			return true
		}
	}
	return false
}

// DetectBoxes visits the mask column-major and grows one box per occupied
// cell not already within one cell of a finalized box. Touching tables with no
// blank separation end up in the same box.
func DetectBoxes(mask [][]bool) []BoundingBox {
	rows := len(mask)
	if rows == 0 || len(mask[0]) == 0 {
		return nil
	}
	cols := len(mask[0])

	var boxes []BoundingBox
	visited := make([][]bool, rows)
	for r := range visited {
		visited[r] = make([]bool, cols)
	}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if !mask[r][c] || visited[r][c] || inAnyBox(boxes, r, c, rows, cols) {
				visited[r][c] = true
				continue
			}
			b := GrowBox(mask, r, c)
			boxes = append(boxes, b)
			for br := b.RowMin; br <= b.RowMax; br++ {
				for bc := b.ColMin; bc <= b.ColMax; bc++ {
					visited[br][bc] = true
				}
			}
		}
	}
	return boxes
}

func inAnyBox(boxes []BoundingBox, row, col, rows, cols int) bool {
	for _, b := range boxes {
		if b.Contains(row, col, 1, rows, cols) {
			return true
		}
	}
	return false
}
