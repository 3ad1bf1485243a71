package tabclean

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a check issue.
type Severity int

const (
	SeverityError   Severity = iota // processing would lose or corrupt data
	SeverityWarning                 // processing would change the file
	SeverityInfo                    // informational only
)

// String returns the short severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

// IssueKind classifies a check issue.
type IssueKind string

const (
	IssuePadding    IssueKind = "padding"
	IssueUnstripped IssueKind = "unstripped"
	IssueMultiTable IssueKind = "multi-table"
	IssueReference  IssueKind = "reference"
	IssueEmptySheet IssueKind = "empty-sheet"
	IssueUnreadable IssueKind = "unreadable"
)

// Issue is a single finding of Check.
type Issue struct {
	Severity Severity
	Kind     IssueKind
	Ref      CellRef
	Message  string
}

// String formats the issue as "[WARN] Sheet1!A1: message".
func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Ref, i.Message)
}

// CheckOptions selects which checks run.
type CheckOptions struct {
	Padding    bool
	Strip      bool
	MultiTable bool
	Limits     Limits
	// MaxCells caps the number of unstripped cells listed per sheet; 0 means 10.
	MaxCells int
}

// Check inspects a workbook without modifying it. Padding checks also report
// formula references that could not be rewritten after unpadding.
func Check(wb *Workbook, opts CheckOptions) []Issue {
	if opts.MaxCells <= 0 {
		opts.MaxCells = 10
	}
	var issues []Issue
	for _, e := range wb.Skipped {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Kind:     IssueUnreadable,
			Ref:      NewCellRef(e.Sheet, 0, 0),
			Message:  "sheet could not be read: " + e.Err.Error(),
		})
	}
	pm := make(PaddingMap, len(wb.Sheets))
	for _, s := range wb.Sheets {
		pm[s.Name] = DetectPadding(s.Grid, opts.Limits)
	}

	for _, s := range wb.Sheets {
		origin := NewCellRef(s.Name, 0, 0)
		if s.Grid.Malformed() {
			issues = append(issues, Issue{Severity: SeverityInfo, Kind: IssueEmptySheet, Ref: origin, Message: "sheet is empty"})
			continue
		}
		pad := pm[s.Name]
		if opts.Padding && !pad.IsZero() {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Kind:     IssuePadding,
				Ref:      NewCellRef(s.Name, pad.Rows, pad.Cols),
				Message:  fmt.Sprintf("data starts after %d empty rows and %d empty columns", pad.Rows, pad.Cols),
			})
		}
		if opts.Strip {
			issues = append(issues, checkStrip(s, pad, opts.MaxCells)...)
		}
		if opts.MultiTable {
			if issue, ok := checkMultiTable(s); ok {
				issues = append(issues, issue)
			}
		}
	}

	if opts.Padding {
		issues = append(issues, checkReferences(wb, pm)...)
	}
	return issues
}

func checkStrip(s *Sheet, pad Padding, maxCells int) []Issue {
	cells := s.Grid.UnstrippedCells(pad.Rows, pad.Cols)
	if len(cells) == 0 {
		return nil
	}
	var issues []Issue
	for i, pos := range cells {
		if i == maxCells {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Kind:     IssueUnstripped,
				Ref:      NewCellRef(s.Name, pos[0], pos[1]),
				Message:  fmt.Sprintf("%d more cells with surrounding whitespace", len(cells)-maxCells),
			})
			break
		}
		v, _ := s.Grid.Get(pos[0], pos[1]).Value.(string)
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Kind:     IssueUnstripped,
			Ref:      NewCellRef(s.Name, pos[0], pos[1]),
			Message:  fmt.Sprintf("text %q has surrounding whitespace", v),
		})
	}
	return issues
}

func checkMultiTable(s *Sheet) (Issue, bool) {
	rows, cols := EmptySeparators(s.Grid)
	if len(rows) == 0 && len(cols) == 0 {
		return Issue{}, false
	}
	var parts []string
	if len(rows) > 0 {
		parts = append(parts, "empty rows "+joinIndices(rows, func(i int) string { return fmt.Sprint(i + 1) }))
	}
	if len(cols) > 0 {
		parts = append(parts, "empty columns "+joinIndices(cols, ColToName))
	}
	return Issue{
		Severity: SeverityInfo,
		Kind:     IssueMultiTable,
		Ref:      NewCellRef(s.Name, 0, 0),
		Message:  "sheet may hold several tables: " + strings.Join(parts, "; "),
	}, true
}

func joinIndices(idx []int, name func(int) string) string {
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = name(v)
	}
	return strings.Join(out, ",")
}

// checkReferences dry-runs the formula rewrite and reports every token that
// would be left pointing outside its sheet.
func checkReferences(wb *Workbook, pm PaddingMap) []Issue {
	var issues []Issue
	for _, s := range wb.Sheets {
		if s.Grid.Malformed() {
			continue
		}
		for _, pos := range s.Grid.FormulaCells() {
			c := &Collector{}
			NewRewriter(c).Rewrite(s.Grid.Get(pos[0], pos[1]).Formula, s.Name, pm)
			for _, d := range c.Diagnostics() {
				if d.Message == msgUnknownSheet {
					continue
				}
				issues = append(issues, Issue{
					Severity: SeverityError,
					Kind:     IssueReference,
					Ref:      NewCellRef(s.Name, pos[0], pos[1]),
					Message:  fmt.Sprintf("reference %s: %s", d.Token, d.Message),
				})
			}
		}
	}
	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
