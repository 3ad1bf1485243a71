package tabclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuesOfKind(issues []Issue, kind IssueKind) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func TestCheck_All(t *testing.T) {
	wb := paddedWorkbook()

	issues := Check(wb, CheckOptions{Padding: true, Strip: true, MultiTable: true, Limits: DefaultLimits()})

	padding := issuesOfKind(issues, IssuePadding)
	require.Len(t, padding, 1)
	assert.Equal(t, "Data!B3", padding[0].Ref.String())
	assert.Equal(t, "[WARN] Data!B3: data starts after 2 empty rows and 1 empty columns", padding[0].String())

	strip := issuesOfKind(issues, IssueUnstripped)
	require.Len(t, strip, 1)
	assert.Equal(t, "Data!C5", strip[0].Ref.String())

	refs := issuesOfKind(issues, IssueReference)
	require.Len(t, refs, 1)
	assert.Equal(t, "Summary!B2", refs[0].Ref.String())
	assert.Equal(t, SeverityError, refs[0].Severity)

	assert.Empty(t, issuesOfKind(issues, IssueMultiTable))
	assert.True(t, HasErrors(issues))

	// Check never mutates.
	assert.Equal(t, 5, wb.Sheet("Data").Grid.Rows())
}

func TestCheck_OnlySelected(t *testing.T) {
	issues := Check(paddedWorkbook(), CheckOptions{Strip: true})
	require.Len(t, issues, 1)
	assert.Equal(t, IssueUnstripped, issues[0].Kind)
	assert.False(t, HasErrors(issues))
}

func TestCheck_MultiTable(t *testing.T) {
	wb := &Workbook{Sheets: []*Sheet{{Name: "S", Grid: GridFromRows([][]any{
		{"x", "y", nil, "p", "q"},
		{1, 2, nil, 3, 4},
		{nil},
		{"r", "s"},
	})}}}

	issues := Check(wb, CheckOptions{MultiTable: true})

	require.Len(t, issues, 1)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "empty rows 3")
	assert.Contains(t, issues[0].Message, "empty columns C")
}

func TestCheck_MaxCells(t *testing.T) {
	wb := &Workbook{Sheets: []*Sheet{{Name: "S", Grid: GridFromRows([][]any{
		{" a", "b ", " c "},
	})}}}

	issues := Check(wb, CheckOptions{Strip: true, MaxCells: 2})

	require.Len(t, issues, 3)
	assert.Contains(t, issues[2].Message, "1 more cells")
}

func TestCheck_EmptySheet(t *testing.T) {
	wb := &Workbook{Sheets: []*Sheet{
		{Name: "Blank", Grid: NewGrid(0, 0)},
		{Name: "Missing", Grid: nil},
	}}
	var issues []Issue
	require.NotPanics(t, func() {
		issues = Check(wb, CheckOptions{Padding: true, Strip: true, MultiTable: true})
	})
	require.Len(t, issues, 2)
	assert.Equal(t, IssueEmptySheet, issues[0].Kind)
	assert.Equal(t, "Missing!A1", issues[1].Ref.String())
}
