package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"cost-projections/internal/errors"
)

// JSONWriter writes each table as an array of objects keyed by column name
type JSONWriter struct {
	Indent string
}

// Format implements Writer
func (w *JSONWriter) Format() Format { return FormatJSON }

// Write implements Writer
func (w *JSONWriter) Write(dir string, doc *Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.TypeInternal, err, "creating %s", dir)
	}

	var paths []string
	for _, t := range doc.all() {
		objects := make([]map[string]string, len(t.Rows))
		for i, row := range t.Rows {
			obj := make(map[string]string, len(t.Header))
			for j, col := range t.Header {
				if j < len(row) {
					obj[col] = row[j]
				}
			}
			objects[i] = obj
		}

		data, err := json.MarshalIndent(objects, "", w.Indent)
		if err != nil {
			return paths, errors.Wrapf(errors.TypeInternal, err, "encoding %s", t.Name)
		}
		path := filepath.Join(dir, t.Name+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return paths, errors.Wrapf(errors.TypeInternal, err, "writing %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
