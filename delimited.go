package tabclean

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatXLSX, FormatCSV, FormatTSV, FormatTXT, FormatDAT:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// IsDelimited reports whether the format is a text table.
func (f Format) IsDelimited() bool {
	switch f {
	case FormatCSV, FormatTSV, FormatTXT, FormatDAT:
		return true
	}
	return false
}

// separator returns the field delimiter, 0 for whitespace-separated formats.
func (f Format) separator() rune {
	switch f {
	case FormatCSV:
		return ','
	case FormatTSV:
		return '\t'
	}
	return 0
}

// ReadDelimited reads a CSV, TSV or whitespace-separated text file into a
// single-sheet workbook named after the file stem. The text encoding is
// detected and converted to UTF-8.
func ReadDelimited(path string, format Format) (*Workbook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	text, _, err := DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	g, err := parseDelimited(strings.NewReader(text), format)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	base := filepath.Base(path)
	return &Workbook{
		Name:   base,
		Format: format,
		Sheets: []*Sheet{{Name: strings.TrimSuffix(base, filepath.Ext(base)), Grid: g}},
	}, nil
}

func parseDelimited(r io.Reader, format Format) (*Grid, error) {
	sep := format.separator()
	if sep == 0 {
		return parseWhitespace(r)
	}
	rd := csv.NewReader(r)
	rd.Comma = sep
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	g := NewGrid(0, 0)
	row := 0
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for c, v := range record {
			g.Set(row, c, parseValue(v))
		}
		if g.Rows() <= row {
			g.rows = row + 1
		}
		row++
	}
	return g, nil
}

func parseWhitespace(r io.Reader) (*Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g := NewGrid(0, 0)
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	for row, line := range lines {
		for c, v := range strings.Fields(line) {
			g.Set(row, c, parseValue(v))
		}
		if g.Rows() <= row {
			g.rows = row + 1
		}
	}
	return g, nil
}

// parseValue turns a raw field into a number when it parses as one.
func parseValue(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

// WriteDelimited writes one sheet as CSV or TSV.
func WriteDelimited(s *Sheet, path string, format Format) error {
	sep := format.separator()
	if sep == 0 {
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = sep
	for _, row := range s.Grid.Dense() {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = cell.String()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
