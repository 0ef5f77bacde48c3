// internal/ui/component/table.go
package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table renders rows of text cells with an optional selection cursor.
type Table struct {
	columns     []TableColumn
	rows        [][]string
	rowStyles   map[int]lipgloss.Style
	selectedRow int
	selectable  bool
	empty       string

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	emptyStyle       lipgloss.Style
}

// NewTable creates a new table component
func NewTable(columns ...TableColumn) *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns:   columns,
		rowStyles: make(map[int]lipgloss.Style),
		empty:     "Nothing here yet",

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		emptyStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			Padding(0, 1),
	}
}

// SetRows replaces all rows and clamps the selection.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	t.rowStyles = make(map[int]lipgloss.Style)
	if t.selectedRow >= len(rows) {
		t.selectedRow = len(rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetRowStyle sets a custom style for a specific row
func (t *Table) SetRowStyle(rowIndex int, s lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rows) {
		t.rowStyles[rowIndex] = s
	}
	return t
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetEmptyText sets the placeholder shown when there are no rows.
func (t *Table) SetEmptyText(text string) *Table {
	t.empty = text
	return t
}

// MoveUp moves selection up
func (t *Table) MoveUp() {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
	}
}

// MoveDown moves selection down
func (t *Table) MoveDown() {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
}

// SelectedRow returns the index of the selected row, or -1 when empty.
func (t *Table) SelectedRow() int {
	if len(t.rows) == 0 {
		return -1
	}
	return t.selectedRow
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	var content strings.Builder

	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = renderCell(col.Header, col, t.headerStyle)
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")

	separator := make([]string, len(t.columns))
	for i, col := range t.columns {
		separator[i] = strings.Repeat("─", col.Width+2)
	}
	content.WriteString(strings.Join(separator, "┼"))

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(t.emptyStyle.Render(t.empty))
		return content.String()
	}

	for rowIndex, row := range t.rows {
		rowStyle := t.rowStyle
		if s, ok := t.rowStyles[rowIndex]; ok {
			rowStyle = s
		}
		if t.selectable && rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			data := ""
			if i < len(row) {
				data = row[i]
			}
			cells[i] = renderCell(data, col, rowStyle)
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	return content.String()
}

// renderCell truncates content to the column width and aligns it.
func renderCell(content string, col TableColumn, s lipgloss.Style) string {
	return s.Width(col.Width + 2).Align(col.Align).Render(Truncate(content, col.Width))
}

// Truncate shortens s to width runes, ending with "…" when cut.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// ShortAddress renders a base58 address as its first and last four characters.
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:4] + "…" + address[len(address)-4:]
}
