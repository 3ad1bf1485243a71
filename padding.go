package tabclean

// Limits bounds the cost of padding detection on large sheets.
// Both windows change observable results: data starting below ScanRows is
// reported as unpadded, and a column whose only value lies below the
// ColumnWindow is reported as empty.
type Limits struct {
	// ScanRows is the number of leading rows inspected for vertical padding.
	ScanRows int `yaml:"scan_rows"`
	// ColumnWindow is the number of rows below the vertical padding inspected
	// when testing a column for emptiness.
	ColumnWindow int `yaml:"column_window"`
}

// DefaultLimits returns the stock detection windows: 21 rows scanned for
// vertical padding and a 50-row window for column emptiness.
func DefaultLimits() Limits {
	return Limits{ScanRows: 21, ColumnWindow: 50}
}

func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.ScanRows <= 0 {
		l.ScanRows = d.ScanRows
	}
	if l.ColumnWindow <= 0 {
		l.ColumnWindow = d.ColumnWindow
	}
	return l
}

// Padding holds the number of leading rows and columns of a sheet that are
// pure padding.
type Padding struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// IsZero reports whether nothing needs deleting.
func (p Padding) IsZero() bool {
	return p.Rows == 0 && p.Cols == 0
}

// PaddingMap maps sheet names to their padding. It is built once before any
// sheet is mutated and is read-only afterwards.
type PaddingMap map[string]Padding

// Has reports whether the sheet is known.
func (pm PaddingMap) Has(sheet string) bool {
	_, ok := pm[sheet]
	return ok
}

// DetectPadding computes the leading empty rows and columns of a grid.
//
// Rows are scanned top-down; the first non-empty row sets Rows. If ScanRows
// rows are all empty the scan stops and Rows stays 0. Columns are scanned
// left-to-right, each tested only over rows Rows+1 .. min(grid rows, Rows+ColumnWindow)
// (1-based); the first non-empty column sets Cols to its 0-based index.
func DetectPadding(g *Grid, lim Limits) Padding {
	var p Padding
	if g.Malformed() {
		return p
	}
	lim = lim.normalized()

	for r := 0; r < g.Rows(); r++ {
		if !g.RowEmpty(r) {
			p.Rows = r
			break
		}
		if r+1 >= lim.ScanRows {
			break
		}
	}

	rowLimit := min(g.Rows(), p.Rows+lim.ColumnWindow)
	for c := 0; c < g.Cols(); c++ {
		empty := true
		for r := p.Rows; r < rowLimit; r++ {
			if !g.IsEmpty(r, c) {
				empty = false
				break
			}
		}
		if !empty {
			p.Cols = c
			break
		}
	}
	return p
}

// DeletePadding removes the padding rows, then the padding columns, shifting
// the remaining cells toward the origin.
func DeletePadding(g *Grid, p Padding) {
	if g.Malformed() {
		return
	}
	g.DeleteRows(p.Rows)
	g.DeleteCols(p.Cols)
}
