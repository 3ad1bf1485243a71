package tabclean

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the workbook: every sheet with its
// extent, padding, formula count and the tables found by bounding-box growth.
// Useful for deciding on a split strategy before running one.
func Describe(wb *Workbook, lim Limits) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s (%s)\n", wb.Name, wb.Format)

	for _, s := range wb.Sheets {
		if s.Grid.Malformed() {
			fmt.Fprintf(&b, "  Sheet %q empty\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "  Sheet %q %dx%d", s.Name, s.Grid.Rows(), s.Grid.Cols())
		if pad := DetectPadding(s.Grid, lim); !pad.IsZero() {
			fmt.Fprintf(&b, " padding rows=%d cols=%d", pad.Rows, pad.Cols)
		}
		b.WriteByte('\n')

		if n := len(s.Grid.FormulaCells()); n > 0 {
			fmt.Fprintf(&b, "    formulas: %d\n", n)
		}
		if rows, cols := EmptySeparators(s.Grid); len(rows) > 0 || len(cols) > 0 {
			fmt.Fprintf(&b, "    separators: %d rows, %d columns\n", len(rows), len(cols))
		}

		tables := SegmentByOccupancy(s.Grid)
		fmt.Fprintf(&b, "    tables: %d\n", len(tables))
		for _, t := range tables {
			describeTable(&b, t)
		}
	}
	return b.String()
}

func describeTable(b *strings.Builder, t TableBlock) {
	key := t.Key
	if key == "" {
		key = "-"
	}
	fmt.Fprintf(b, "      %s %s %dx%d", key, t.Box, len(t.Rows), t.Width())
	if t.Title != "" && t.Title != t.Key {
		fmt.Fprintf(b, " title=%q", t.Title)
	}
	if len(t.Header) > 0 {
		fmt.Fprintf(b, " header=[%s]", strings.Join(t.Header, ", "))
	}
	b.WriteByte('\n')
}
