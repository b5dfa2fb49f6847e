// Package output renders pipeline results as tables and writes them to files.
// This package produces machine-readable outputs for the model and for review.
package output

import (
	"sort"
	"strconv"
	"time"

	"cost-projections/internal/errors"
)

// Format represents an output file format
type Format string

const (
	// FormatCSV writes one CSV file per table
	FormatCSV Format = "csv"

	// FormatJSON writes one JSON array per table
	FormatJSON Format = "json"

	// FormatXLSX writes one workbook with a sheet per table
	FormatXLSX Format = "xlsx"
)

// Table is a named rectangular table of rendered cells
type Table struct {
	// Name is used for file and sheet names
	Name string

	// Header holds the column names
	Header []string

	// Rows holds rendered cells, one slice per row
	Rows [][]string
}

// Metadata describes the run that produced the tables
type Metadata struct {
	RunID           string
	Node            string
	ReferenceRegion string
	BaseYear        int
	Method          string
	Format          string
	StartedAt       time.Time
	Duration        time.Duration
	Version         string
}

// Table renders the metadata as a key/value table
func (m Metadata) Table() Table {
	return Table{
		Name:   "run",
		Header: []string{"key", "value"},
		Rows: [][]string{
			{"run_id", m.RunID},
			{"node", m.Node},
			{"reference_region", m.ReferenceRegion},
			{"base_year", strconv.Itoa(m.BaseYear)},
			{"method", m.Method},
			{"format", m.Format},
			{"started_at", m.StartedAt.UTC().Format(time.RFC3339)},
			{"duration", m.Duration.String()},
			{"version", m.Version},
		},
	}
}

// Document is everything a writer emits for one run
type Document struct {
	Metadata Metadata
	Tables   []Table
}

// all returns the metadata table followed by the data tables
func (d *Document) all() []Table {
	return append([]Table{d.Metadata.Table()}, d.Tables...)
}

// Writer writes a document into a directory
type Writer interface {
	// Format returns the format type
	Format() Format

	// Write creates the output files and returns their paths
	Write(dir string, doc *Document) ([]string, error)
}

// Registry manages writer registration
type Registry struct {
	writers map[Format]Writer
}

// NewRegistry returns a registry with the csv, json and xlsx writers
func NewRegistry() *Registry {
	r := &Registry{writers: make(map[Format]Writer)}
	r.Register(&CSVWriter{})
	r.Register(&JSONWriter{Indent: "  "})
	r.Register(&XLSXWriter{})
	return r
}

// Register adds a writer, replacing any writer for the same format
func (r *Registry) Register(w Writer) {
	r.writers[w.Format()] = w
}

// Get returns the writer for a format
func (r *Registry) Get(format string) (Writer, error) {
	w, ok := r.writers[Format(format)]
	if !ok {
		return nil, errors.Inputf("unknown writer %q: expected one of %v", format, r.Formats())
	}
	return w, nil
}

// Formats lists registered formats in order
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.writers))
	for f := range r.writers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
