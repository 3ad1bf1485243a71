package tabclean

import (
	"context"
	"log/slog"
	"sync"
)

// DiagnosticKind classifies a non-fatal condition found while processing.
type DiagnosticKind int

const (
	// UnresolvableReference: a formula token names an unknown sheet or would
	// shift outside the sheet. The token is left unchanged.
	UnresolvableReference DiagnosticKind = iota
	// MalformedGrid: a sheet with zero rows or columns was skipped.
	MalformedGrid
	// UnreadableSheet: a sheet could not be loaded from its file.
	UnreadableSheet
)

// String returns the kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvableReference:
		return "UnresolvableReference"
	case MalformedGrid:
		return "MalformedGrid"
	case UnreadableSheet:
		return "UnreadableSheet"
	default:
		return "Unknown"
	}
}

// Diagnostic is one reported condition.
type Diagnostic struct {
	Kind    DiagnosticKind
	Sheet   string // sheet where the condition was observed
	Target  string // referenced sheet, for formula diagnostics
	Token   string // offending token, for formula diagnostics
	Message string
}

// DiagnosticSink receives diagnostics. Components never log through a global;
// the sink is handed to them explicitly.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// LogSink writes diagnostics to a slog.Logger at warn level.
type LogSink struct {
	Logger *slog.Logger
}

// Report implements DiagnosticSink.
func (s LogSink) Report(d Diagnostic) {
	if s.Logger == nil {
		return
	}
	level := slog.LevelWarn
	if d.Kind == UnresolvableReference && d.Message == msgUnknownSheet {
		level = slog.LevelDebug
	}
	s.Logger.Log(context.Background(), level, d.Message,
		"kind", d.Kind.String(),
		"sheet", d.Sheet,
		"target", d.Target,
		"token", d.Token,
	)
}

// Collector accumulates diagnostics in memory. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report implements DiagnosticSink.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// multiSink fans a diagnostic out to several sinks.
type multiSink []DiagnosticSink

func (m multiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}
