package grid

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"adminkit/internal/confirm"
	"adminkit/internal/notify"
	"adminkit/internal/rowaction"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID   int
	Name string
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func productGrid(handlers rowaction.Handlers[product], n notify.Notifier) *Grid[product] {
	return New(Config[product]{
		Columns: []Column[product]{
			{Title: "ID", Width: 4, Value: func(p product) string { return strconv.Itoa(p.ID) }},
			{Title: "Name", Value: func(p product) string { return p.Name }},
		},
		Handlers: handlers,
		Notifier: n,
		Key:      func(p product) string { return strconv.Itoa(p.ID) },
	})
}

func sample() []product {
	return []product{{1, "Lamp"}, {2, "Desk"}, {3, "Chair"}}
}

func TestCursorNavigation(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{}, nil)
	g.SetRows(sample())

	g.Update(runes("j"))
	g.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, g.Cursor())
	g.Update(runes("j"))
	assert.Equal(t, 2, g.Cursor(), "cursor stops at the last row")

	g.Update(runes("g"))
	assert.Equal(t, 0, g.Cursor())
	g.Update(runes("G"))
	sel, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, "Chair", sel.Name)
}

func TestSetRowsFollowsKey(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{}, nil)
	g.SetRows(sample())
	g.Update(runes("j"))

	g.SetRows([]product{{0, "New"}, {1, "Lamp"}, {2, "Desk"}, {3, "Chair"}})
	sel, _ := g.Selected()
	assert.Equal(t, 2, sel.ID)

	g.SetRows([]product{{1, "Lamp"}})
	assert.Equal(t, 0, g.Cursor(), "cursor clamps when the key is gone")

	g.SetRows(nil)
	_, ok := g.Selected()
	assert.False(t, ok)
}

func TestDeleteIntentOpensModalAndRoutesKeys(t *testing.T) {
	center := notify.NewCenter(time.Second)
	var deleted []int
	g := productGrid(rowaction.Handlers[product]{
		Delete: func(_ context.Context, p product) error {
			deleted = append(deleted, p.ID)
			return nil
		},
	}, center)
	g.SetRows(sample())
	g.Update(runes("j"))

	g.Update(runes("d"))
	view, open := g.Modal()
	require.True(t, open)
	assert.Contains(t, view, "Delete")

	assert.Nil(t, g.Update(runes("j")), "navigation is swallowed by the modal")
	assert.Equal(t, 1, g.Cursor())

	cmd := g.Update(runes("y"))
	require.NotNil(t, cmd)
	done := cmd().(confirm.DoneMsg)
	assert.NoError(t, done.Err)
	assert.Equal(t, []int{2}, deleted)
	assert.Equal(t, 1, center.Count(notify.Success))

	_, open = g.Modal()
	assert.False(t, open)
}

func TestEditIntentWithoutRenderer(t *testing.T) {
	var updated []product
	g := productGrid(rowaction.Handlers[product]{
		Update: func(_ context.Context, p product) error { updated = append(updated, p); return nil },
	}, nil)
	g.SetRows(sample())

	cmd := g.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, rowaction.UpdatedMsg{}, cmd())
	assert.Equal(t, []product{{1, "Lamp"}}, updated)
}

func TestGateOptionsPerRow(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{
		Delete: func(context.Context, product) error { return nil },
	}, nil)
	g.cfg.GateOptions = func(p product) []confirm.Option {
		return []confirm.Option{confirm.WithPrompt("Delete " + p.Name + "?")}
	}
	g.SetRows(sample())
	g.Update(runes("x"))
	view, _ := g.Modal()
	assert.Contains(t, view, "Delete Lamp?")
}

func TestViewShowsOfferedControlsOnly(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{
		Delete: func(context.Context, product) error { return nil },
	}, nil)
	g.SetSize(60, 10)
	g.SetRows(sample())

	view := ansi.Strip(g.View())
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "Chair")
	assert.Contains(t, view, "[d]")
	assert.NotContains(t, view, "[e")
}

func TestViewTruncatesLongCells(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{}, nil)
	g.SetSize(30, 5)
	g.SetRows([]product{{1, strings.Repeat("x", 100)}})

	for _, line := range strings.Split(ansi.Strip(g.View()), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 30)
	}
	assert.Contains(t, g.View(), "…")
}

func TestViewScrollsWithCursor(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{}, nil)
	g.SetSize(40, 3)
	var rows []product
	for i := 1; i <= 10; i++ {
		rows = append(rows, product{i, "row" + strconv.Itoa(i)})
	}
	g.SetRows(rows)
	g.Update(runes("G"))

	view := ansi.Strip(g.View())
	assert.Contains(t, view, "row10")
	assert.NotContains(t, view, "row1 ")
}

func TestEmptyText(t *testing.T) {
	g := productGrid(rowaction.Handlers[product]{}, nil)
	assert.Contains(t, ansi.Strip(g.View()), "No records.")
}

func TestStylesAreReadOnEveryView(t *testing.T) {
	calls := 0
	g := New(Config[product]{
		Columns: []Column[product]{{Title: "Name", Value: func(p product) string { return p.Name }}},
		Styles: func() Styles {
			calls++
			return DefaultStyles()
		},
	})
	g.SetRows(sample())

	g.View()
	g.View()
	assert.Equal(t, 2, calls)
	assert.Contains(t, ansi.Strip(g.View()), "▸ Lamp")
}
