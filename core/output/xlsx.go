package output

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"cost-projections/internal/errors"
)

// WorkbookName is the file written by XLSXWriter
const WorkbookName = "cost-projections.xlsx"

// XLSXWriter writes one workbook with a sheet per table
type XLSXWriter struct{}

// Format implements Writer
func (w *XLSXWriter) Format() Format { return FormatXLSX }

// Write implements Writer
func (w *XLSXWriter) Write(dir string, doc *Document) ([]string, error) {
	tables := doc.all()
	for _, t := range tables {
		if len(t.Rows)+1 > excelize.TotalRows {
			return nil, errors.Newf(errors.TypeData, "table %s has %d rows, more than a worksheet holds", t.Name, len(t.Rows))
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "creating %s", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return nil, errors.Wrapf(errors.TypeInternal, err, "naming sheet %s", t.Name)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, errors.Wrapf(errors.TypeInternal, err, "adding sheet %s", t.Name)
		}
		if err := writeSheet(f, t); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(dir, WorkbookName)
	if err := f.SaveAs(path); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "saving %s", path)
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, t Table) error {
	sw, err := f.NewStreamWriter(t.Name)
	if err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "streaming sheet %s", t.Name)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "writing %s header", t.Name)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(errors.TypeInternal, err, "addressing %s row %d", t.Name, i+2)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return errors.Wrapf(errors.TypeInternal, err, "writing %s row %d", t.Name, i+2)
		}
	}
	return sw.Flush()
}

// cellValue stores numeric text as numbers so spreadsheets can compute with it.
func cellValue(s string) interface{} {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
