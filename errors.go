package tabclean

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedFormat indicates a file extension no adapter can read or write.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ProcessError represents a failure on one file or sheet during a run.
type ProcessError struct {
	Path  string
	Sheet string
	Stage string // "read", "extract", "split", "write"
	Err   error
}

func (e *ProcessError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s %q sheet %q: %v", e.Stage, e.Path, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Path, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError.
func NewProcessError(path, sheet, stage string, err error) *ProcessError {
	return &ProcessError{
		Path:  path,
		Sheet: sheet,
		Stage: stage,
		Err:   err,
	}
}
