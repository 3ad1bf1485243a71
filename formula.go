package tabclean

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellRefRegex matches cell references in formulas: an optional 'Quoted Name'!
// or Name! qualifier, column letters and row digits, each optionally
// prefixed by a '$' absolute marker (e.g. A1, $B$3, Sheet1!A1, 'My Sheet'!C2).
var cellRefRegex = regexp.MustCompile(`('[^']+'!|[\p{L}\p{N}_]+!)?(\$?)([A-Z]+)(\$?)(\d+)`)

const (
	msgUnknownSheet = "reference to unknown sheet left unchanged"
	msgOutOfSheet   = "deletion shifts reference outside the sheet; original reference kept for manual check"
)

// Rewriter shifts formula cell references after leading rows and columns have
// been deleted from one or more sheets.
type Rewriter struct {
	sink DiagnosticSink
}

// NewRewriter creates a Rewriter reporting to sink. A nil sink discards diagnostics.
func NewRewriter(sink DiagnosticSink) *Rewriter {
	return &Rewriter{sink: sink}
}

// Rewrite returns formula with every reference shifted by the padding of the
// sheet it points to. Unqualified references resolve to sheet. References to
// sheets absent from pm, references on unpadded sheets, and references that
// would land on row or column ≤ 0 are returned unchanged.
//
// pm must be the snapshot taken before any sheet was mutated.
func (rw *Rewriter) Rewrite(formula, sheet string, pm PaddingMap) string {
	if formula == "" {
		return formula
	}
	matches := cellRefRegex.FindAllStringSubmatchIndex(formula, -1)
	if len(matches) == 0 {
		return formula
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(formula[last:m[0]])
		if m[1] < len(formula) && formula[m[1]] == '(' {
			// function name such as LOG10(
			b.WriteString(formula[m[0]:m[1]])
		} else {
			b.WriteString(rw.rewriteToken(formula, m, sheet, pm))
		}
		last = m[1]
	}
	b.WriteString(formula[last:])
	return b.String()
}

// rewriteToken handles one regex match given as submatch indices into formula.
func (rw *Rewriter) rewriteToken(formula string, m []int, sheet string, pm PaddingMap) string {
	token := formula[m[0]:m[1]]
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return formula[m[2*i]:m[2*i+1]]
	}
	qualifier, colAbs, colRef, rowAbs, rowRef := group(1), group(2), group(3), group(4), group(5)

	target := sheet
	if qualifier != "" {
		target = strings.TrimSpace(strings.Trim(qualifier, "'!"))
	}

	pad, ok := pm[target]
	if !ok {
		rw.report(Diagnostic{
			Kind:    UnresolvableReference,
			Sheet:   sheet,
			Target:  target,
			Token:   token,
			Message: msgUnknownSheet,
		})
		return token
	}
	if pad.IsZero() {
		return token
	}

	row, err := strconv.Atoi(rowRef)
	if err != nil {
		return token
	}
	col, err := excelize.ColumnNameToNumber(colRef)
	if err != nil {
		return token
	}

	newRow := row - pad.Rows
	newCol := col - pad.Cols
	if newRow <= 0 || newCol <= 0 {
		rw.report(Diagnostic{
			Kind:    UnresolvableReference,
			Sheet:   sheet,
			Target:  target,
			Token:   token,
			Message: fmt.Sprintf("%s (column %d, row %d)", msgOutOfSheet, newCol, newRow),
		})
		return token
	}

	newColRef, err := excelize.ColumnNumberToName(newCol)
	if err != nil {
		return token
	}
	return qualifier + colAbs + newColRef + rowAbs + strconv.Itoa(newRow)
}

func (rw *Rewriter) report(d Diagnostic) {
	if rw.sink != nil {
		rw.sink.Report(d)
	}
}
