package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

type column struct {
	title string
	width int
	right bool
}

// Table renders rows under a styled header. Cells may contain styled text
// and emoji; widths are measured in terminal cells.
type Table struct {
	cols []column
	rows [][]string
}

// NewTable creates a table with the given column titles.
func NewTable(titles ...string) *Table {
	cols := make([]column, len(titles))
	for i, title := range titles {
		cols[i] = column{title: title, width: visualLen(title)}
	}
	return &Table{cols: cols}
}

// AlignRight right-aligns column i. Out-of-range indexes are ignored.
func (t *Table) AlignRight(i int) *Table {
	if i >= 0 && i < len(t.cols) {
		t.cols[i].right = true
	}
	return t
}

// AddRow appends a row. Missing cells are blank; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	for i, cell := range row {
		t.cols[i].width = max(t.cols[i].width, visualLen(cell))
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the formatted table. A table without columns renders empty.
func (t *Table) Render() string {
	if len(t.cols) == 0 {
		return ""
	}

	var sb strings.Builder
	titles := make([]string, len(t.cols))
	rules := make([]string, len(t.cols))
	for i, c := range t.cols {
		titles[i] = c.title
		rules[i] = strings.Repeat("─", c.width)
	}
	t.writeLine(&sb, titles, &StyleHeader)
	t.writeLine(&sb, rules, &StyleMuted)
	for _, row := range t.rows {
		t.writeLine(&sb, row, nil)
	}
	return sb.String()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render())
	return int64(n), err
}

// writeLine renders one line of cells; style may be nil for plain text.
func (t *Table) writeLine(sb *strings.Builder, cells []string, style *lipgloss.Style) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(columnGap)
		}
		c := t.cols[i]
		if c.right {
			cell = padLeft(cell, c.width)
		} else if i < len(cells)-1 {
			cell = pad(cell, c.width)
		}
		if style != nil {
			cell = style.Render(cell)
		}
		sb.WriteString(cell)
	}
	sb.WriteString("\n")
}

// visualLen returns the terminal cell width of s, ignoring ANSI escapes.
// Emoji icons occupy two cells.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads s to the given visual width.
func pad(s string, width int) string {
	if n := visualLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := visualLen(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
