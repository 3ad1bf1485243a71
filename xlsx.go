package tabclean

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX opens an xlsx file and loads every sheet into a Workbook.
func ReadXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f, filepath.Base(path), readSheet)
}

// ReadXLSXFrom loads a workbook from a reader.
func ReadXLSXFrom(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", name, err)
	}
	defer f.Close()
	return readWorkbook(f, name, readSheet)
}

// sheetReader loads one sheet into a grid.
type sheetReader func(f *excelize.File, sheet string) (*Grid, error)

// readWorkbook loads every sheet with read. A sheet that cannot be read is
// recorded in Workbook.Skipped and the remaining sheets are still loaded; the
// file fails only when no sheet could be read.
func readWorkbook(f *excelize.File, name string, read sheetReader) (*Workbook, error) {
	wb := &Workbook{Name: name, Format: FormatXLSX}
	for _, sheet := range f.GetSheetList() {
		g, err := read(f, sheet)
		if err != nil {
			wb.Skipped = append(wb.Skipped, NewProcessError(name, sheet, "read", err))
			continue
		}
		wb.Sheets = append(wb.Sheets, &Sheet{Name: sheet, Grid: g})
	}
	if len(wb.Sheets) == 0 && len(wb.Skipped) > 0 {
		errs := make([]error, len(wb.Skipped))
		for i, e := range wb.Skipped {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return wb, nil
}

// readSheet reads the raw values of one sheet and checks each reported cell
// for a formula. Only positions present in the cell data are visited, so an
// inflated <dimension> declaration costs nothing. GetRows keeps cells that
// carry a formula even when they have no cached value.
func readSheet(f *excelize.File, sheet string) (*Grid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	g := NewGrid(len(rows), 0)
	for r, row := range rows {
		for c, raw := range row {
			name := NewCellRef(sheet, r, c).CellName()
			formula, err := f.GetCellFormula(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("read formula %s: %w", name, err)
			}
			if formula != "" {
				g.Set(r, c, Cell{Kind: KindFormula, Formula: strings.TrimPrefix(formula, "="), Value: raw})
				continue
			}
			if raw == "" {
				continue
			}

			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				typ = excelize.CellTypeUnset
			}
			g.Set(r, c, typedCell(raw, typ))
		}
	}
	return g, nil
}

func typedCell(raw string, typ excelize.CellType) Cell {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return Text(raw)
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return Number(v)
	}
	return Text(raw)
}

// WriteXLSX writes the workbook to a new xlsx file. Sheets keep their order
// and names; only values and formulas are written.
func WriteXLSX(wb *Workbook, path string) error {
	f, err := buildFile(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// WriteXLSXTo writes the workbook to w.
func WriteXLSXTo(wb *Workbook, w io.Writer) error {
	f, err := buildFile(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildFile(wb *Workbook) (*excelize.File, error) {
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %q has no sheets", wb.Name)
	}
	f := excelize.NewFile()
	for i, s := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				f.Close()
				return nil, NewProcessError(wb.Name, s.Name, "write", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			f.Close()
			return nil, NewProcessError(wb.Name, s.Name, "write", err)
		}
		if err := writeSheet(f, s); err != nil {
			f.Close()
			return nil, NewProcessError(wb.Name, s.Name, "write", err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, s *Sheet) error {
	if s.Grid == nil {
		return nil
	}
	for _, pos := range s.Grid.positions() {
		cell := s.Grid.Get(pos[0], pos[1])
		name := NewCellRef(s.Name, pos[0], pos[1]).CellName()
		var err error
		switch cell.Kind {
		case KindFormula:
			err = f.SetCellFormula(s.Name, name, cell.Formula)
		case KindNumber:
			v, _ := cell.Value.(float64)
			err = f.SetCellFloat(s.Name, name, v, -1, 64)
		case KindBool:
			v, _ := cell.Value.(bool)
			err = f.SetCellBool(s.Name, name, v)
		default:
			err = f.SetCellStr(s.Name, name, cell.String())
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}
