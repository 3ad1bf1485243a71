package tabclean

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paddedWorkbook returns a workbook whose "Data" sheet has two empty rows and
// one empty column before its values, and an unpadded "Summary" sheet
// referencing it.
func paddedWorkbook() *Workbook {
	data := NewGrid(0, 0)
	data.Set(2, 1, Number(10))
	data.Set(3, 1, Number(20))
	data.Set(4, 1, Formula("SUM(B3:B4)"))
	data.Set(4, 2, Text("  total  "))

	summary := NewGrid(0, 0)
	summary.Set(0, 0, Text("grand"))
	summary.Set(0, 1, Formula("Data!B5+Data!B3"))
	summary.Set(1, 1, Formula("Data!A1"))

	return &Workbook{
		Name:   "book.xlsx",
		Format: FormatXLSX,
		Sheets: []*Sheet{
			{Name: "Data", Grid: data},
			{Name: "Summary", Grid: summary},
		},
	}
}

func TestProcess_CrossSheetRewrite(t *testing.T) {
	wb := paddedWorkbook()

	report := NewProcessor().Process(wb)

	assert.Equal(t, Padding{Rows: 2, Cols: 1}, report.Padding["Data"])
	assert.Equal(t, Padding{}, report.Padding["Summary"])

	data := wb.Sheet("Data").Grid
	assert.Equal(t, 3, data.Rows())
	assert.Equal(t, 2, data.Cols())
	assert.Equal(t, "10", data.Get(0, 0).String())
	assert.Equal(t, "SUM(A1:A2)", data.Get(2, 0).Formula)
	assert.Equal(t, "  total  ", data.Get(2, 1).String(), "text is not stripped by default")

	summary := wb.Sheet("Summary").Grid
	assert.Equal(t, "Data!A3+Data!A1", summary.Get(0, 1).Formula)
	assert.Equal(t, "Data!A1", summary.Get(1, 1).Formula, "out-of-sheet reference is kept")

	assert.Equal(t, 2, report.Rewritten)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, UnresolvableReference, report.Diagnostics[0].Kind)
	assert.Equal(t, "Summary", report.Diagnostics[0].Sheet)
	assert.True(t, report.Changed())
}

func TestProcess_StripText(t *testing.T) {
	wb := paddedWorkbook()

	report := NewProcessor(WithStripText(true)).Process(wb)

	assert.Equal(t, 1, report.Stripped["Data"])
	assert.Equal(t, "total", wb.Sheet("Data").Grid.Get(2, 1).String())
}

func TestProcess_StripOnly(t *testing.T) {
	wb := paddedWorkbook()

	report := NewProcessor(WithUnpad(false), WithStripText(true)).Process(wb)

	assert.Equal(t, Padding{}, report.Padding["Data"])
	data := wb.Sheet("Data").Grid
	assert.Equal(t, 5, data.Rows(), "no rows deleted")
	assert.Equal(t, "total", data.Get(4, 2).String())
	assert.Equal(t, "SUM(B3:B4)", data.Get(4, 1).Formula)
	assert.Zero(t, report.Rewritten)
}

func TestProcess_UnpaddedWorkbookUnchanged(t *testing.T) {
	wb := &Workbook{Sheets: []*Sheet{{Name: "S", Grid: GridFromRows([][]any{
		{"a", "b"},
		{1, "=A2*2"},
	})}}}

	report := NewProcessor(WithStripText(true)).Process(wb)

	assert.False(t, report.Changed())
	assert.Equal(t, "A2*2", wb.Sheets[0].Grid.Get(1, 1).Formula)
}

func TestProcess_EmptySheetReported(t *testing.T) {
	wb := paddedWorkbook()
	wb.Sheets = append(wb.Sheets,
		&Sheet{Name: "Blank", Grid: NewGrid(0, 0)},
		&Sheet{Name: "Missing", Grid: nil},
	)

	c := &Collector{}
	var report *Report
	require.NotPanics(t, func() {
		report = NewProcessor(WithDiagnosticSink(c), WithStripText(true)).Process(wb)
	})

	var malformed []string
	for _, d := range report.Diagnostics {
		if d.Kind == MalformedGrid {
			malformed = append(malformed, d.Sheet)
		}
	}
	assert.Equal(t, []string{"Blank", "Missing"}, malformed)
	assert.Equal(t, report.Diagnostics, c.Diagnostics())
	assert.Equal(t, "SUM(A1:A2)", wb.Sheet("Data").Grid.Get(2, 0).Formula)
}

func TestProcess_LogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewProcessor(WithLogger(logger)).Process(paddedWorkbook())

	out := buf.String()
	assert.Contains(t, out, "padding found")
	assert.Contains(t, out, "sheet=Data")
	assert.Contains(t, out, "token=Data!A1")
}

func TestProcess_CustomLimits(t *testing.T) {
	g := NewGrid(0, 0)
	g.Set(30, 0, Text("late"))
	wb := &Workbook{Sheets: []*Sheet{{Name: "S", Grid: g}}}

	report := NewProcessor(WithLimits(Limits{ScanRows: 50})).Process(wb)

	assert.Equal(t, Padding{Rows: 30}, report.Padding["S"])
	assert.Equal(t, "late", g.Get(0, 0).String())
}
