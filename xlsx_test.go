package tabclean

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createPaddedXLSX writes a two-sheet workbook:
//
//	Data:    B3=10  B4=20  B5=SUM(B3:B4)  C5="note"
//	Summary: A1="grand"  B1=Data!B5*2  C1=true  A2="end"
func createPaddedXLSX(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	_, err := f.NewSheet("Summary")
	require.NoError(t, err)

	f.SetCellValue("Data", "B3", 10)
	f.SetCellValue("Data", "B4", 20)
	f.SetCellFormula("Data", "B5", "SUM(B3:B4)")
	f.SetCellValue("Data", "C5", "note")

	f.SetCellValue("Summary", "A1", "grand")
	f.SetCellFormula("Summary", "B1", "Data!B5*2")
	f.SetCellValue("Summary", "C1", true)
	f.SetCellValue("Summary", "A2", "end")

	path := filepath.Join(t.TempDir(), "padded.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	wb, err := ReadXLSX(createPaddedXLSX(t))
	require.NoError(t, err)

	assert.Equal(t, "padded.xlsx", wb.Name)
	assert.Equal(t, FormatXLSX, wb.Format)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Data", wb.Sheets[0].Name)
	assert.Equal(t, "Summary", wb.Sheets[1].Name)

	data := wb.Sheet("Data").Grid
	assert.True(t, data.RowEmpty(0))
	assert.True(t, data.ColEmpty(0))
	assert.Equal(t, Number(10), data.Get(2, 1))
	assert.Equal(t, KindFormula, data.Get(4, 1).Kind)
	assert.Equal(t, "SUM(B3:B4)", data.Get(4, 1).Formula)
	assert.Equal(t, Text("note"), data.Get(4, 2))

	summary := wb.Sheet("Summary").Grid
	assert.Equal(t, "Data!B5*2", summary.Get(0, 1).Formula)
	assert.Equal(t, Bool(true), summary.Get(0, 2))
}

func TestReadXLSX_Missing(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestXLSX_ProcessRoundTrip(t *testing.T) {
	wb, err := ReadXLSX(createPaddedXLSX(t))
	require.NoError(t, err)

	report := NewProcessor().Process(wb)
	assert.Equal(t, Padding{Rows: 2, Cols: 1}, report.Padding["Data"])

	out := filepath.Join(t.TempDir(), "clean.xlsx")
	require.NoError(t, WriteXLSX(wb, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data", "Summary"}, f.GetSheetList())

	v, _ := f.GetCellValue("Data", "A1")
	assert.Equal(t, "10", v)
	v, _ = f.GetCellValue("Data", "B3")
	assert.Equal(t, "note", v)

	formula, _ := f.GetCellFormula("Data", "A3")
	assert.Equal(t, "SUM(A1:A2)", formula)
	formula, _ = f.GetCellFormula("Summary", "B1")
	assert.Equal(t, "Data!A3*2", formula)

	v, _ = f.GetCellValue("Summary", "A2")
	assert.Equal(t, "end", v)
}

func TestWriteXLSXTo_Reader(t *testing.T) {
	wb := &Workbook{Name: "mem.xlsx", Sheets: []*Sheet{
		{Name: "First", Grid: GridFromRows([][]any{{"a", 1.25, false}})},
		{Name: "Second", Grid: GridFromRows([][]any{{"=First!B1*2", "x"}})},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSXTo(wb, &buf))

	back, err := ReadXLSXFrom(&buf, "mem.xlsx")
	require.NoError(t, err)
	require.Len(t, back.Sheets, 2)

	first := back.Sheet("First").Grid
	assert.Equal(t, Text("a"), first.Get(0, 0))
	assert.Equal(t, Number(1.25), first.Get(0, 1))
	assert.Equal(t, Bool(false), first.Get(0, 2))
	assert.Equal(t, "First!B1*2", back.Sheet("Second").Grid.Get(0, 0).Formula)
}

func TestWriteXLSX_NoSheets(t *testing.T) {
	err := WriteXLSX(&Workbook{Name: "empty"}, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.Error(t, err)
}

func TestReadXLSX_InflatedDimension(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "only"))
	require.NoError(t, f.SetSheetDimension("Sheet1", "A1:XFD1048576"))
	path := filepath.Join(t.TempDir(), "inflated.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	done := make(chan *Workbook, 1)
	go func() {
		wb, err := ReadXLSX(path)
		assert.NoError(t, err)
		done <- wb
	}()

	select {
	case wb := <-done:
		require.NotNil(t, wb)
		g := wb.Sheets[0].Grid
		assert.Equal(t, 2, g.Rows())
		assert.Equal(t, 2, g.Cols())
		assert.Equal(t, Text("only"), g.Get(1, 1))
	case <-time.After(10 * time.Second):
		t.Fatal("reading a sheet with an inflated dimension did not finish")
	}
}

func TestReadWorkbook_SkipsUnreadableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "ok"))
	_, err := f.NewSheet("Bad")
	require.NoError(t, err)

	read := func(f *excelize.File, sheet string) (*Grid, error) {
		if sheet == "Bad" {
			return nil, errors.New("corrupt worksheet")
		}
		return readSheet(f, sheet)
	}
	wb, err := readWorkbook(f, "mixed.xlsx", read)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
	require.Len(t, wb.Skipped, 1)
	assert.Equal(t, "Bad", wb.Skipped[0].Sheet)
	assert.ErrorContains(t, wb.Skipped[0], "corrupt worksheet")

	issues := Check(wb, CheckOptions{})
	require.Len(t, issues, 1)
	assert.Equal(t, IssueUnreadable, issues[0].Kind)
	assert.True(t, HasErrors(issues))

	report := NewProcessor().Process(wb)
	require.NotEmpty(t, report.Diagnostics)
	assert.Equal(t, UnreadableSheet, report.Diagnostics[0].Kind)
	assert.Equal(t, "Bad", report.Diagnostics[0].Sheet)
	assert.Equal(t, Text("ok"), wb.Sheets[0].Grid.Get(0, 0))
}

func TestReadWorkbook_NoReadableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := readWorkbook(f, "broken.xlsx", func(*excelize.File, string) (*Grid, error) {
		return nil, errors.New("corrupt worksheet")
	})
	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Sheet1", perr.Sheet)
}
