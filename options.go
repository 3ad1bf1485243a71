package tabclean

import (
	"io"
	"log/slog"
)

// Options holds configuration for the Processor.
type Options struct {
	unpad     bool
	stripText bool
	limits    Limits
	logger    *slog.Logger
	sink      DiagnosticSink
}

func defaultOptions() *Options {
	return &Options{
		unpad:  true,
		limits: DefaultLimits(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures the Processor.
type Option func(*Options)

// WithUnpad controls whether padding rows/columns are deleted and formulas
// rewritten (default: true).
func WithUnpad(unpad bool) Option {
	return func(o *Options) { o.unpad = unpad }
}

// WithStripText controls whether surrounding whitespace is trimmed from text
// cells (default: false).
func WithStripText(strip bool) Option {
	return func(o *Options) { o.stripText = strip }
}

// WithLimits sets the padding detection windows.
func WithLimits(l Limits) Option {
	return func(o *Options) { o.limits = l.normalized() }
}

// WithLogger sets the logger used for progress messages and, unless a sink is
// given, for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDiagnosticSink adds a sink receiving every diagnostic.
func WithDiagnosticSink(s DiagnosticSink) Option {
	return func(o *Options) { o.sink = s }
}
