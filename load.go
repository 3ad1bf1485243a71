package tabclean

import (
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a workbook, choosing the adapter from the file extension.
func Load(path string) (*Workbook, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if format == FormatXLSX {
		return ReadXLSX(path)
	}
	return ReadDelimited(path, format)
}

// Save writes a workbook in the format implied by path. Delimited formats
// hold one sheet only; Save writes the first one.
func Save(wb *Workbook, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return WriteXLSX(wb, path)
	}
	if len(wb.Sheets) == 0 {
		return fmt.Errorf("workbook %q has no sheets", wb.Name)
	}
	return WriteDelimited(wb.Sheets[0], path, format)
}

// Export writes wb into dir as stem.<format> and returns the written paths.
// A multi-sheet workbook exported to a delimited format yields one file per
// sheet, named stem_<sheet>.<format>.
func Export(wb *Workbook, dir, stem string, format Format) ([]string, error) {
	if format == FormatXLSX {
		path := filepath.Join(dir, stem+".xlsx")
		if err := WriteXLSX(wb, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	if format.separator() == 0 {
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}
	var paths []string
	for _, s := range wb.Sheets {
		name := stem
		if len(wb.Sheets) > 1 {
			name = stem + "_" + SafeSheetName(s.Name)
		}
		path := filepath.Join(dir, name+"."+string(format))
		if err := WriteDelimited(s, path, format); err != nil {
			return paths, NewProcessError(path, s.Name, "write", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
