package tabclean

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SheetTables holds the tables segmented out of one sheet.
type SheetTables struct {
	Sheet  string
	Tables []TableBlock
}

// SplitWorkbook segments every sheet of wb with the given strategy. Tables
// rejected by filter are dropped; a nil filter keeps everything.
func SplitWorkbook(wb *Workbook, s Strategy, filter *TableFilter) ([]SheetTables, error) {
	var out []SheetTables
	for _, sheet := range wb.Sheets {
		tables, err := SegmentTables(sheet.Grid, s)
		if err != nil {
			return nil, NewProcessError(wb.Name, sheet.Name, "split", err)
		}
		if filter != nil {
			kept := tables[:0]
			for _, t := range tables {
				ok, err := filter.Match(sheet.Name, t)
				if err != nil {
					return nil, NewProcessError(wb.Name, sheet.Name, "split", err)
				}
				if ok {
					kept = append(kept, t)
				}
			}
			tables = kept
		}
		out = append(out, SheetTables{Sheet: sheet.Name, Tables: tables})
	}
	return out, nil
}

// tableLabel joins the sheet name and table key. A table with an empty key
// is labelled by its sheet alone.
func tableLabel(sheet string, t TableBlock) string {
	if t.Key == "" {
		return sheet
	}
	return sheet + "_" + t.Key
}

// TablesWorkbook lays out every table on its own sheet named
// SafeSheetName(sheet_key). Clashing names get a numeric suffix.
func TablesWorkbook(name string, sts []SheetTables) *Workbook {
	wb := &Workbook{Name: name, Format: FormatXLSX}
	used := make(map[string]bool)
	for _, st := range sts {
		for _, t := range st.Tables {
			sheet := uniqueName(SafeSheetName(tableLabel(st.Sheet, t)), used)
			wb.Sheets = append(wb.Sheets, &Sheet{Name: sheet, Grid: t.Grid()})
		}
	}
	return wb
}

func uniqueName(name string, used map[string]bool) string {
	if name == "" {
		name = "Table"
	}
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		runes := []rune(name)
		if len(runes)+len(suffix) > 31 {
			runes = runes[:31-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// WriteTables persists segmented tables under dir and returns the written
// paths. For xlsx a single workbook {stem}_{strategy}.xlsx holds one sheet per
// table; for csv/tsv each table goes to {stem}_{strategy}_{label}.{ext}.
func WriteTables(sts []SheetTables, dir, stem string, s Strategy, format Format) ([]string, error) {
	base := stem + "_" + string(s)
	if format == FormatXLSX {
		wb := TablesWorkbook(base+".xlsx", sts)
		if len(wb.Sheets) == 0 {
			return nil, nil
		}
		path := filepath.Join(dir, wb.Name)
		if err := WriteXLSX(wb, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	if format.separator() == 0 {
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}

	var paths []string
	used := make(map[string]bool)
	for _, st := range sts {
		for _, t := range st.Tables {
			label := t.Key
			if len(sts) > 1 || label == "" {
				label = tableLabel(st.Sheet, t)
			}
			name := uniqueName(SafeSheetName(label), used)
			path := filepath.Join(dir, base+"_"+name+"."+string(format))
			sheet := &Sheet{Name: name, Grid: t.Grid()}
			if err := WriteDelimited(sheet, path, format); err != nil {
				return paths, NewProcessError(path, st.Sheet, "write", err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
