package tabclean

// Format identifies a tabular file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatTXT  Format = "txt"
	FormatDAT  Format = "dat"
)

// Sheet is one named grid of a workbook.
type Sheet struct {
	Name string
	Grid *Grid
}

// Workbook is an ordered set of sheets loaded from one file. Sheet names are
// unique within a workbook.
type Workbook struct {
	Name   string // file name without directory
	Format Format
	Sheets []*Sheet
	// Skipped holds the sheets of the source file that could not be read.
	Skipped []*ProcessError
}

// Sheet returns the sheet with the given name, or nil.
func (wb *Workbook) Sheet(name string) *Sheet {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Report summarizes one Process call.
type Report struct {
	Padding     PaddingMap
	Stripped    map[string]int // sheet → number of text cells trimmed
	Rewritten   int            // formula cells whose text changed
	Diagnostics []Diagnostic
}

// Changed reports whether the workbook was modified.
func (r *Report) Changed() bool {
	if r.Rewritten > 0 {
		return true
	}
	for _, p := range r.Padding {
		if !p.IsZero() {
			return true
		}
	}
	for _, n := range r.Stripped {
		if n > 0 {
			return true
		}
	}
	return false
}

// Processor removes sheet padding, trims text and keeps formulas pointing at
// the same data.
type Processor struct {
	opts *Options
}

// NewProcessor creates a Processor with the given options.
func NewProcessor(opts ...Option) *Processor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Processor{opts: o}
}

// PaddingMap computes the padding of every sheet. With unpadding disabled
// every sheet maps to zero padding.
func (p *Processor) PaddingMap(wb *Workbook) PaddingMap {
	pm := make(PaddingMap, len(wb.Sheets))
	for _, s := range wb.Sheets {
		if !p.opts.unpad {
			pm[s.Name] = Padding{}
			continue
		}
		pm[s.Name] = DetectPadding(s.Grid, p.opts.limits)
	}
	return pm
}

// Process mutates the workbook in three passes:
//
//  1. snapshot the padding of every sheet;
//  2. per sheet, trim text outside the padding, then delete padding rows and columns;
//  3. rewrite every formula of every sheet against the snapshot.
//
// The rewrite pass runs after all deletions because a formula may point into
// any other sheet of the workbook.
func (p *Processor) Process(wb *Workbook) *Report {
	collector := &Collector{}
	sink := multiSink{collector, LogSink{Logger: p.opts.logger}}
	if p.opts.sink != nil {
		sink = multiSink{collector, p.opts.sink}
	}
	log := p.opts.logger.With("workbook", wb.Name)

	report := &Report{
		Padding:  p.PaddingMap(wb),
		Stripped: make(map[string]int),
	}
	for _, e := range wb.Skipped {
		sink.Report(Diagnostic{Kind: UnreadableSheet, Sheet: e.Sheet, Message: e.Err.Error()})
	}
	for _, s := range wb.Sheets {
		if pad := report.Padding[s.Name]; !pad.IsZero() {
			log.Info("padding found", "sheet", s.Name, "rows", pad.Rows, "cols", pad.Cols)
		}
	}

	for _, s := range wb.Sheets {
		if s.Grid.Malformed() {
			sink.Report(Diagnostic{Kind: MalformedGrid, Sheet: s.Name, Message: "empty sheet skipped"})
			continue
		}
		pad := report.Padding[s.Name]
		if p.opts.stripText {
			report.Stripped[s.Name] = s.Grid.StripText(pad.Rows, pad.Cols)
		}
		if p.opts.unpad {
			DeletePadding(s.Grid, pad)
		}
	}

	if p.opts.unpad {
		rw := NewRewriter(sink)
		for _, s := range wb.Sheets {
			if s.Grid.Malformed() {
				continue
			}
			for _, pos := range s.Grid.FormulaCells() {
				cell := s.Grid.Get(pos[0], pos[1])
				updated := rw.Rewrite(cell.Formula, s.Name, report.Padding)
				if updated != cell.Formula {
					s.Grid.SetFormula(pos[0], pos[1], updated)
					report.Rewritten++
				}
			}
		}
	}

	report.Diagnostics = collector.Diagnostics()
	log.Debug("workbook processed",
		"rewritten", report.Rewritten,
		"diagnostics", len(report.Diagnostics),
	)
	return report
}
