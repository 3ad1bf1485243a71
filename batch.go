package tabclean

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// FileFunc processes one supported file. src is the input path, dstDir the
// mirrored output directory, which already exists.
type FileFunc func(ctx context.Context, src, dstDir string) FileResult

// FileResult is the outcome of one file of a batch run.
type FileResult struct {
	Src     string
	Outputs []string
	Copied  bool // unsupported file copied verbatim
	Report  *Report
	Issues  []Issue
	Err     error
}

// BatchResult collects the per-file outcomes in walk order.
type BatchResult struct {
	Files []FileResult
}

// Errors returns the per-file errors.
func (r *BatchResult) Errors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Err joins every per-file error, nil when all files succeeded.
func (r *BatchResult) Err() error {
	return errors.Join(r.Errors()...)
}

// Batch runs a FileFunc over a file or a directory tree. Directory inputs are
// mirrored into the destination; files no adapter supports are copied as is
// unless NoCopy is set. A failing file never stops its siblings.
type Batch struct {
	Workers int  // parallel files; 0 means GOMAXPROCS
	Extract bool // unpack archives and process their content
	NoCopy  bool // skip unsupported files instead of copying them
	// Formats restricts processing to these input formats; files of other
	// formats are handled like unsupported ones. Empty means every format.
	Formats []Format
	Logger  *slog.Logger
}

type batchTask struct {
	src    string
	dstDir string
	copy   bool
	err    error // set when the file failed before processing
}

// Run processes src into dst with fn.
func (b *Batch) Run(ctx context.Context, src, dst string, fn FileFunc) (*BatchResult, error) {
	log := b.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, src)
	}

	var cleanup []string
	defer func() {
		for _, dir := range cleanup {
			os.RemoveAll(dir)
		}
	}()

	var tasks []batchTask
	if info.IsDir() {
		tasks, err = b.collect(src, dst, &cleanup)
		if err != nil {
			return nil, err
		}
	} else {
		tasks = []batchTask{{src: src, dstDir: dst}}
	}
	if b.NoCopy {
		tasks = slices.DeleteFunc(tasks, func(t batchTask) bool { return t.copy })
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := &BatchResult{Files: make([]FileResult, len(tasks))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if task.err != nil {
				log.Error("file failed", "src", task.src, "error", task.err)
				result.Files[i] = FileResult{Src: task.src, Err: task.err}
				return nil
			}
			if err := os.MkdirAll(task.dstDir, 0o755); err != nil {
				result.Files[i] = FileResult{Src: task.src, Err: err}
				return nil
			}
			if task.copy {
				dstPath := filepath.Join(task.dstDir, filepath.Base(task.src))
				err := copyFile(task.src, dstPath)
				result.Files[i] = FileResult{Src: task.src, Outputs: []string{dstPath}, Copied: true, Err: err}
				log.Debug("copied unsupported file", "src", task.src)
				return nil
			}
			res := fn(ctx, task.src, task.dstDir)
			res.Src = task.src
			if res.Err != nil {
				log.Error("file failed", "src", task.src, "error", res.Err)
			}
			result.Files[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// collect walks root and returns one task per file. Archives are extracted
// into temporary directories (appended to cleanup) and walked in turn, their
// content mirrored under a directory named after the archive. An archive that
// cannot be extracted becomes a failed task.
func (b *Batch) collect(root, dst string, cleanup *[]string) ([]batchTask, error) {
	var tasks []batchTask
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dstDir := filepath.Join(dst, filepath.Dir(rel))

		if b.Extract && IsArchive(path) {
			sub, err := b.extract(path, filepath.Join(dstDir, archiveStem(path)), cleanup)
			if err != nil {
				tasks = append(tasks, batchTask{src: path, dstDir: dstDir, err: NewProcessError(path, "", "extract", err)})
				return nil
			}
			tasks = append(tasks, sub...)
			return nil
		}

		tasks = append(tasks, batchTask{src: path, dstDir: dstDir, copy: !b.accepts(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}
	return tasks, nil
}

func (b *Batch) extract(archive, dstDir string, cleanup *[]string) ([]batchTask, error) {
	tmp, err := os.MkdirTemp("", "tabclean-*")
	if err != nil {
		return nil, err
	}
	*cleanup = append(*cleanup, tmp)
	if err := ExtractArchive(archive, tmp); err != nil {
		return nil, err
	}
	return b.collect(tmp, dstDir, cleanup)
}

// accepts reports whether path is processed rather than copied.
func (b *Batch) accepts(path string) bool {
	format, err := FormatFromPath(path)
	if err != nil {
		return false
	}
	return len(b.Formats) == 0 || slices.Contains(b.Formats, format)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
