package output

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"cost-projections/internal/errors"
)

// CSVWriter writes one CSV file per table
type CSVWriter struct{}

// Format implements Writer
func (w *CSVWriter) Format() Format { return FormatCSV }

// Write implements Writer
func (w *CSVWriter) Write(dir string, doc *Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "creating %s", dir)
	}

	var paths []string
	for _, t := range doc.all() {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeCSV(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "creating %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "writing %s", path)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "writing %s", path)
	}
	return f.Close()
}
