// Package grid renders a list of rows as a table and attaches a
// rowaction.Dispatcher to every row.
package grid

import (
	"context"
	"strings"

	"adminkit/internal/confirm"
	"adminkit/internal/notify"
	"adminkit/internal/rowaction"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Column describes one table column. Width 0 takes the remaining space.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Config configures a Grid.
type Config[T any] struct {
	Columns      []Column[T]
	Handlers     rowaction.Handlers[T]
	EditRenderer rowaction.EditRenderer[T]
	Notifier     notify.Notifier
	// Key identifies a row across SetRows calls so the cursor can follow it.
	Key func(T) string
	// GateOptions customizes the delete prompt per row.
	GateOptions func(T) []confirm.Option
	Context     func() context.Context
	EmptyText   string
	Keys        *KeyMap
	// Styles is read on every View. Nil means DefaultStyles.
	Styles func() Styles
}

// Styles are the grid's render styles.
type Styles struct {
	Header   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Hint     lipgloss.Style
}

// DefaultStyles renders with the terminal's own colors.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Faint(true).Bold(true),
		Row:      lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().Reverse(true).Bold(true),
		Hint:     lipgloss.NewStyle().Faint(true),
	}
}

// Grid is a cursor-driven table of rows.
type Grid[T any] struct {
	cfg  Config[T]
	keys KeyMap

	rows        []T
	dispatchers []*rowaction.Dispatcher[T]
	cursor      int
	offset      int

	width  int
	height int
}

// New creates an empty grid.
func New[T any](cfg Config[T]) *Grid[T] {
	keys := DefaultKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}
	if cfg.EmptyText == "" {
		cfg.EmptyText = "No records."
	}
	if cfg.Styles == nil {
		cfg.Styles = DefaultStyles
	}
	return &Grid[T]{cfg: cfg, keys: keys, width: 80, height: 10}
}

// SetRows replaces the rows and rebuilds their dispatchers.
func (g *Grid[T]) SetRows(rows []T) {
	var selectedKey string
	hadSelection := false
	if g.cfg.Key != nil && g.cursor < len(g.rows) {
		selectedKey = g.cfg.Key(g.rows[g.cursor])
		hadSelection = true
	}

	g.rows = append([]T(nil), rows...)
	g.dispatchers = make([]*rowaction.Dispatcher[T], len(g.rows))
	for i, row := range g.rows {
		var opts []rowaction.Option
		if g.cfg.GateOptions != nil {
			opts = append(opts, rowaction.WithGateOptions(g.cfg.GateOptions(row)...))
		}
		if g.cfg.Context != nil {
			opts = append(opts, rowaction.WithContext(g.cfg.Context))
		}
		g.dispatchers[i] = rowaction.New(row, g.cfg.Handlers, g.cfg.EditRenderer, g.cfg.Notifier, opts...)
	}

	if hadSelection {
		for i, row := range g.rows {
			if g.cfg.Key(row) == selectedKey {
				g.cursor = i
				g.clamp()
				return
			}
		}
	}
	g.clamp()
}

// Rows returns the current rows.
func (g *Grid[T]) Rows() []T { return g.rows }

// Len returns the number of rows.
func (g *Grid[T]) Len() int { return len(g.rows) }

// Cursor returns the selected index.
func (g *Grid[T]) Cursor() int { return g.cursor }

// SetSize sets the render area.
func (g *Grid[T]) SetSize(width, height int) {
	g.width, g.height = width, height
	g.clamp()
}

// Selected returns the row under the cursor.
func (g *Grid[T]) Selected() (T, bool) {
	var zero T
	if g.cursor >= len(g.rows) {
		return zero, false
	}
	return g.rows[g.cursor], true
}

// Dispatcher returns the dispatcher for row i, or nil.
func (g *Grid[T]) Dispatcher(i int) *rowaction.Dispatcher[T] {
	if i < 0 || i >= len(g.dispatchers) {
		return nil
	}
	return g.dispatchers[i]
}

func (g *Grid[T]) active() *rowaction.Dispatcher[T] {
	return g.Dispatcher(g.cursor)
}

// Modal returns the selected row's editor or prompt view while one is open.
func (g *Grid[T]) Modal() (string, bool) {
	d := g.active()
	if d == nil {
		return "", false
	}
	view := d.View()
	return view, view != ""
}

// InModal reports whether the selected row owns input.
func (g *Grid[T]) InModal() bool {
	d := g.active()
	return d != nil && (d.Editing() || d.Confirming() || d.Busy())
}

// Update handles navigation and row intents.
func (g *Grid[T]) Update(msg tea.Msg) tea.Cmd {
	if d := g.active(); d != nil && g.InModal() {
		return d.Update(msg)
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, g.keys.Up):
		g.cursor--
	case key.Matches(keyMsg, g.keys.Down):
		g.cursor++
	case key.Matches(keyMsg, g.keys.Home):
		g.cursor = 0
	case key.Matches(keyMsg, g.keys.End):
		g.cursor = len(g.rows) - 1
	case key.Matches(keyMsg, g.keys.Edit):
		if d := g.active(); d != nil {
			return d.Edit()
		}
	case key.Matches(keyMsg, g.keys.Delete):
		if d := g.active(); d != nil {
			d.Delete()
		}
	}
	g.clamp()
	return nil
}

func (g *Grid[T]) clamp() {
	if g.cursor >= len(g.rows) {
		g.cursor = len(g.rows) - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	visible := g.visibleRows()
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+visible {
		g.offset = g.cursor - visible + 1
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

// visibleRows is the number of body rows below the header.
func (g *Grid[T]) visibleRows() int {
	if g.height <= 1 {
		return 1
	}
	return g.height - 1
}

const controlsWidth = 6

func (g *Grid[T]) columnWidths() []int {
	widths := make([]int, len(g.cfg.Columns))
	fixed, flex := 0, 0
	for i, c := range g.cfg.Columns {
		widths[i] = c.Width
		if c.Width > 0 {
			fixed += c.Width + 1
		} else {
			flex++
		}
	}
	remaining := g.width - fixed - controlsWidth - 2
	if flex > 0 {
		each := remaining / flex
		if each < 4 {
			each = 4
		}
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = each
			}
		}
	}
	return widths
}

// View renders the header and visible rows.
func (g *Grid[T]) View() string {
	st := g.cfg.Styles()
	header, normal, selected, hint := st.Header, st.Row, st.Selected, st.Hint

	widths := g.columnWidths()
	var b strings.Builder

	titles := make([]string, len(g.cfg.Columns))
	for i, c := range g.cfg.Columns {
		titles[i] = cell(c.Title, widths[i])
	}
	b.WriteString(header.Render("  " + strings.Join(titles, " ")))

	if len(g.rows) == 0 {
		b.WriteString("\n" + hint.Render("  "+g.cfg.EmptyText))
		return b.String()
	}

	end := g.offset + g.visibleRows()
	if end > len(g.rows) {
		end = len(g.rows)
	}
	for i := g.offset; i < end; i++ {
		row := g.rows[i]
		cells := make([]string, len(g.cfg.Columns))
		for j, c := range g.cfg.Columns {
			value := ""
			if c.Value != nil {
				value = c.Value(row)
			}
			cells[j] = cell(value, widths[j])
		}
		marker := "  "
		style := normal
		if i == g.cursor {
			marker = "▸ "
			style = selected
		}
		line := style.Render(marker + strings.Join(cells, " "))
		b.WriteString("\n" + line + " " + hint.Render(controlHint(g.dispatchers[i])))
	}
	return b.String()
}

func controlHint[T any](d *rowaction.Dispatcher[T]) string {
	var parts []string
	for _, c := range d.Controls() {
		switch c {
		case rowaction.ControlEdit:
			parts = append(parts, "e")
		case rowaction.ControlDelete:
			parts = append(parts, "d")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// cell truncates s to width and pads it.
func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
