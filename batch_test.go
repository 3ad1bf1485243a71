package tabclean

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/mholt/archiver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanToCSV loads a file, unpads it and writes it as csv into dstDir.
func cleanToCSV(_ context.Context, src, dstDir string) FileResult {
	wb, err := Load(src)
	if err != nil {
		return FileResult{Err: NewProcessError(src, "", "read", err)}
	}
	report := NewProcessor().Process(wb)
	base := filepath.Base(src)
	paths, err := Export(wb, dstDir, base[:len(base)-len(filepath.Ext(base))], FormatCSV)
	return FileResult{Outputs: paths, Report: report, Err: err}
}

func TestBatch_Folder(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.csv", []byte(",\n,x\n"))
	writeFile(t, src, "sub/b.tsv", []byte("k\tv\n1\t2\n"))
	writeFile(t, src, "notes.md", []byte("# notes"))
	writeFile(t, src, "broken.xlsx", []byte("not a zip"))

	res, err := (&Batch{Workers: 2}).Run(context.Background(), src, dst, cleanToCSV)
	require.NoError(t, err)
	require.Len(t, res.Files, 4)

	raw, err := os.ReadFile(filepath.Join(dst, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(dst, "sub", "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "k,v\n1,2\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(dst, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# notes", string(raw))

	errs := res.Errors()
	require.Len(t, errs, 1)
	var perr *ProcessError
	require.ErrorAs(t, errs[0], &perr)
	assert.Equal(t, "read", perr.Stage)
	assert.Error(t, res.Err())
}

func TestBatch_SingleFile(t *testing.T) {
	src := writeFile(t, t.TempDir(), "one.csv", []byte("a,b\n"))
	dst := filepath.Join(t.TempDir(), "out")

	res, err := (&Batch{}).Run(context.Background(), src, dst, cleanToCSV)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.NoError(t, res.Err())
	assert.Equal(t, []string{filepath.Join(dst, "one.csv")}, res.Files[0].Outputs)
}

func TestBatch_Missing(t *testing.T) {
	_, err := (&Batch{}).Run(context.Background(), filepath.Join(t.TempDir(), "none"), t.TempDir(), cleanToCSV)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestBatch_ExtractArchive(t *testing.T) {
	stage := t.TempDir()
	c1 := writeFile(t, stage, "c1.csv", []byte(",\n,1\n"))
	c2 := writeFile(t, stage, "c2.csv", []byte("2\n"))

	src := t.TempDir()
	require.NoError(t, archiver.Archive([]string{c1, c2}, filepath.Join(src, "runs.zip")))
	dst := t.TempDir()

	res, err := (&Batch{Extract: true}).Run(context.Background(), src, dst, cleanToCSV)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	var outputs []string
	for _, f := range res.Files {
		outputs = append(outputs, f.Outputs...)
	}
	sort.Strings(outputs)
	assert.Equal(t, []string{
		filepath.Join(dst, "runs", "c1.csv"),
		filepath.Join(dst, "runs", "c2.csv"),
	}, outputs)

	raw, err := os.ReadFile(filepath.Join(dst, "runs", "c1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(raw))
}

func TestBatch_BrokenArchiveKeepsSiblings(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "good.csv", []byte(",\n,ok\n"))
	writeFile(t, src, "bad.zip", []byte("not a zip"))

	res, err := (&Batch{Extract: true}).Run(context.Background(), src, dst, cleanToCSV)
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	raw, err := os.ReadFile(filepath.Join(dst, "good.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(raw))

	errs := res.Errors()
	require.Len(t, errs, 1)
	var perr *ProcessError
	require.ErrorAs(t, errs[0], &perr)
	assert.Equal(t, "extract", perr.Stage)
	assert.Equal(t, filepath.Join(src, "bad.zip"), perr.Path)
}

func TestBatch_NoCopy(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.csv", []byte("1\n"))
	writeFile(t, src, "notes.md", []byte("# notes"))

	res, err := (&Batch{NoCopy: true}).Run(context.Background(), src, dst, cleanToCSV)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(src, "a.csv"), res.Files[0].Src)
	assert.NoFileExists(t, filepath.Join(dst, "notes.md"))
}

func TestBatch_Formats(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, src, "a.csv", []byte("1\n"))
	writeFile(t, src, "b.tsv", []byte("2\n"))

	var calls atomic.Int32
	res, err := (&Batch{Formats: []Format{FormatTSV}}).Run(context.Background(), src, dst, func(ctx context.Context, s, d string) FileResult {
		calls.Add(1)
		return cleanToCSV(ctx, s, d)
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, res.Files[0].Copied, "a.csv is outside the selected formats")
	assert.FileExists(t, filepath.Join(dst, "a.csv"))
	assert.FileExists(t, filepath.Join(dst, "b.csv"))
}

func TestBatch_ArchiveCopiedWithoutExtract(t *testing.T) {
	stage := t.TempDir()
	c1 := writeFile(t, stage, "c1.csv", []byte("1\n"))
	src := t.TempDir()
	require.NoError(t, archiver.Archive([]string{c1}, filepath.Join(src, "runs.zip")))
	dst := t.TempDir()

	var calls atomic.Int32
	res, err := (&Batch{}).Run(context.Background(), src, dst, func(ctx context.Context, s, d string) FileResult {
		calls.Add(1)
		return cleanToCSV(ctx, s, d)
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Copied)
	assert.Zero(t, calls.Load())
	assert.FileExists(t, filepath.Join(dst, "runs.zip"))
}
