package tabclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	wb := paddedWorkbook()
	wb.Sheets = append(wb.Sheets,
		&Sheet{Name: "Blank", Grid: NewGrid(0, 0)},
		&Sheet{Name: "Multi", Grid: GridFromRows([][]any{
			{"Temps", nil},
			{"t", "v"},
			{1, 2},
			{nil, nil, nil, nil},
			{nil, nil, nil, "p", "q"},
			{nil, nil, nil, 3, 4},
		})},
	)

	out := Describe(wb, DefaultLimits())

	assert.Contains(t, out, "Workbook: book.xlsx (xlsx)\n")
	assert.Contains(t, out, `Sheet "Data" 5x3 padding rows=2 cols=1`)
	assert.Contains(t, out, "formulas: 1")
	assert.Contains(t, out, "- B3:C5 2x2")
	assert.Contains(t, out, `Sheet "Blank" empty`)
	assert.Contains(t, out, "tables: 2")
	assert.Contains(t, out, "Temps A1:B3 1x2 header=[t, v]")
	assert.Contains(t, out, "2 D5:E6 1x2 header=[p, q]")
	assert.Contains(t, out, "separators: 1 rows, 1 columns")
}
