package iostreams

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

// TablePrinter renders tabular data to IOStreams.Out.
// When the output is a TTY with colors enabled, it renders a styled header
// and a divider. When piped it writes plain tabwriter columns.
type TablePrinter struct {
	ios     *IOStreams
	headers []string
	rows    [][]string
}

// NewTablePrinter creates a new table printer with the given column headers.
func (s *IOStreams) NewTablePrinter(headers ...string) *TablePrinter {
	return &TablePrinter{
		ios:     s,
		headers: headers,
	}
}

// AddRow adds a data row. Missing columns are treated as empty strings.
func (tp *TablePrinter) AddRow(cols ...string) {
	tp.rows = append(tp.rows, cols)
}

// Len returns the number of data rows (not including headers).
func (tp *TablePrinter) Len() int {
	return len(tp.rows)
}

// Render writes the table to the IOStreams output.
func (tp *TablePrinter) Render() error {
	if len(tp.headers) == 0 {
		return nil
	}
	if tp.ios.IsOutputTTY() && tp.ios.ColorEnabled() {
		return tp.renderStyled()
	}
	return tp.renderPlain()
}

func (tp *TablePrinter) renderPlain() error {
	w := tabwriter.NewWriter(tp.ios.Out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(tp.headers, "\t"))
	for _, row := range tp.rows {
		fmt.Fprintln(w, strings.Join(tp.normalizeRow(row), "\t"))
	}
	return w.Flush()
}

// renderStyled sizes each column to its widest cell, capped so the row fits
// the terminal.
func (tp *TablePrinter) renderStyled() error {
	const gap = 2
	widths := make([]int, len(tp.headers))
	for i, h := range tp.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range tp.rows {
		for i, col := range tp.normalizeRow(row) {
			if w := lipgloss.Width(col); w > widths[i] {
				widths[i] = w
			}
		}
	}

	maxCol := (tp.ios.TerminalWidth() - gap*(len(widths)-1)) / len(widths)
	if maxCol < 1 {
		maxCol = 1
	}
	for i := range widths {
		widths[i] = min(widths[i], max(maxCol, lipgloss.Width(tp.headers[i])))
	}

	spacing := strings.Repeat(" ", gap)
	line := func(cols []string, style lipgloss.Style) string {
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = style.Width(widths[i]).MaxWidth(widths[i]).Render(col)
		}
		return strings.TrimRight(strings.Join(parts, spacing), " ")
	}

	if _, err := fmt.Fprintln(tp.ios.Out, line(tp.headers, HeaderStyle)); err != nil {
		return err
	}
	divider := make([]string, len(widths))
	for i, w := range widths {
		divider[i] = strings.Repeat("─", w)
	}
	if _, err := fmt.Fprintln(tp.ios.Out, MutedStyle.Render(strings.Join(divider, spacing))); err != nil {
		return err
	}
	for _, row := range tp.rows {
		if _, err := fmt.Fprintln(tp.ios.Out, line(tp.normalizeRow(row), lipgloss.NewStyle())); err != nil {
			return err
		}
	}
	return nil
}

// normalizeRow pads or truncates a row to match the number of headers.
func (tp *TablePrinter) normalizeRow(row []string) []string {
	cols := make([]string, len(tp.headers))
	for i := range cols {
		if i < len(row) {
			cols[i] = row[i]
		}
	}
	return cols
}
