// Package ui - Terminal user interface
// Styled CLI output: headers, status lines, tables and the billing summary box.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette (ANSI 256 color codes)
const (
	ColorAccent  = lipgloss.Color("12")
	ColorSuccess = lipgloss.Color("2")
	ColorWarning = lipgloss.Color("3")
	ColorError   = lipgloss.Color("1")
	ColorDim     = lipgloss.Color("241")
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int

	header  lipgloss.Style
	bold    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errorS  lipgloss.Style
	info    lipgloss.Style
	dim     lipgloss.Style
	box     lipgloss.Style
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)

	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
		header:    r.NewStyle().Bold(true).Foreground(ColorAccent),
		bold:      r.NewStyle().Bold(true),
		success:   r.NewStyle().Foreground(ColorSuccess),
		warning:   r.NewStyle().Foreground(ColorWarning),
		errorS:    r.NewStyle().Foreground(ColorError).Bold(true),
		info:      r.NewStyle().Foreground(ColorAccent),
		dim:       r.NewStyle().Foreground(ColorDim),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 2),
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// render applies a style if color is enabled
func (w *Writer) render(s lipgloss.Style, text string) string {
	if w.noColor {
		return text
	}
	return s.Render(text)
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
	w.Println("%s", w.render(w.header, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.render(w.bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.render(w.success, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.render(w.warning, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.render(w.errorS, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.render(w.info, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.render(w.dim, "  "+fmt.Sprintf(format, args...)))
}

// Table renders a table
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
		widths[i] = lipgloss.Width(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := lipgloss.Width(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table. Widths are measured in terminal cells so
// accented plan and ISP names stay aligned.
func (t *Table) Render() {
	t.w.Println("%s", t.w.render(t.w.bold, t.line(t.headers)))

	sep := make([]string, len(t.widths))
	for i, n := range t.widths {
		sep[i] = strings.Repeat("─", n)
	}
	t.w.Println("%s", strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c + strings.Repeat(" ", t.widths[i]-lipgloss.Width(c))
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

// Summary renders the billing summary box
type Summary struct {
	w *Writer

	Title       string
	Plan        string
	MonthlyCost string
	Billable    int64
	Total       int64
	Fallback    bool
	Warnings    int
}

// NewSummary creates a billing summary
func (w *Writer) NewSummary(title string) *Summary {
	return &Summary{w: w, Title: title}
}

// Render prints the summary
func (s *Summary) Render() {
	s.w.Header(s.Title)

	lines := []string{
		fmt.Sprintf("Plan:         %s", s.Plan),
		fmt.Sprintf("Monthly cost: %s", s.MonthlyCost),
		fmt.Sprintf("Billable:     %d of %d connections", s.Billable, s.Total),
	}
	body := strings.Join(lines, "\n")
	if s.w.noColor {
		s.w.Println("%s", body)
	} else {
		s.w.Println("%s", s.w.box.Render(body))
	}
	s.w.Println("")

	if s.Fallback {
		s.w.Warning("demand exceeds every bounded plan; showing the highest-capacity plan")
	}
	if s.Warnings > 0 {
		s.w.Warning("%d warnings", s.Warnings)
	}
}
