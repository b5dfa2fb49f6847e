// Package ui - Terminal user interface
// Colored headers, aligned tables and change lists for CLI output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// Table renders an aligned table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row, padding or truncating cells to the header count
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprintf("%-*s", t.widths[i], c)
		}
		return strings.TrimRight(strings.Join(parts, " │ "), " ")
	}

	t.w.Println("%s", t.w.color(Bold, line(t.headers)))

	seps := make([]string, len(t.widths))
	for i, w := range t.widths {
		seps[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(seps, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", line(row))
	}
}

// ChangeList shows cost changes between two runs
type ChangeList struct {
	w       *Writer
	Title   string
	Added   []ChangeItem
	Removed []ChangeItem
	Changed []ChangeItem
	Footer  string
}

// ChangeItem is a single change
type ChangeItem struct {
	Label      string
	OldCost    string
	NewCost    string
	Change     string
	IsIncrease bool
}

// NewChangeList creates a change view
func (w *Writer) NewChangeList(title string) *ChangeList {
	return &ChangeList{w: w, Title: title}
}

// Render prints the change list
func (d *ChangeList) Render() {
	d.w.Header(d.Title)

	if len(d.Added) > 0 {
		d.w.SubHeader(fmt.Sprintf("Added (%d)", len(d.Added)))
		for _, item := range d.Added {
			d.w.Println("%s%s: %s", d.w.color(Green, "+ "), item.Label, item.NewCost)
		}
		d.w.Println("")
	}

	if len(d.Removed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Removed (%d)", len(d.Removed)))
		for _, item := range d.Removed {
			d.w.Println("%s%s: %s", d.w.color(Red, "- "), item.Label, item.OldCost)
		}
		d.w.Println("")
	}

	if len(d.Changed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Changed (%d)", len(d.Changed)))
		for _, item := range d.Changed {
			arrow := d.w.color(Yellow, "→")
			change := item.Change
			if item.IsIncrease {
				change = d.w.color(Red, change)
			} else {
				change = d.w.color(Green, change)
			}
			d.w.Println("  %s: %s %s %s (%s)", item.Label, item.OldCost, arrow, item.NewCost, change)
		}
		d.w.Println("")
	}

	if d.Footer != "" {
		d.w.Println("%s", strings.Repeat("─", 40))
		d.w.Println("%s", d.Footer)
	}
}
