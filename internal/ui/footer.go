package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// footerHint defines a key hint for the footer bar.
type footerHint struct {
	key  string
	desc string
}

var globalFooterHints = []footerHint{
	{"⇥", "Focus"},
	{"r", "Reload"},
	{"?", "Help"},
	{"q", "Quit"},
}

var sidebarFooterHints = []footerHint{
	{"↑↓", "Collection"},
}

var gridFooterHints = []footerHint{
	{"↑↓", "Navigate"},
	{"e", "Edit"},
	{"d", "Delete"},
	{"n", "New"},
	{"t", "Publish"},
	{"y", "Copy ID"},
	{"p", "Preview"},
}

var editorFooterHints = []footerHint{
	{"⇥", "Field"},
	{"^s", "Save"},
	{"^p", "Preview"},
	{"esc", "Close"},
}

// renderFooter renders the footer bar with pill-style key hints.
func (m *App) renderFooter(st styles) string {
	var hints []footerHint
	switch {
	case m.editorOpen():
		hints = append(hints, editorFooterHints...)
	case m.focus == FocusSidebar:
		hints = append(hints, sidebarFooterHints...)
		hints = append(hints, globalFooterHints...)
	default:
		hints = append(hints, gridFooterHints...)
		hints = append(hints, globalFooterHints...)
	}

	right := st.muted.Render(m.cfg.StoreLabel)
	available := m.width - lipgloss.Width(right) - 4
	hints = trimHintsToFit(st, hints, available)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(st, h.key, h.desc))
	}
	left := strings.Join(parts, "  ")
	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 2)
	return left + strings.Repeat(" ", spacing) + right
}

func trimHintsToFit(st styles, hints []footerHint, available int) []footerHint {
	for len(hints) > 0 {
		total := 0
		for i, h := range hints {
			if i > 0 {
				total += 2
			}
			total += lipgloss.Width(keyPill(st, h.key, h.desc))
		}
		if total <= available {
			break
		}
		hints = hints[:len(hints)-1]
	}
	return hints
}

// keyPill renders a single key hint as a pill with description.
func keyPill(st styles, key, desc string) string {
	return st.keyPill.Render(" "+key+" ") + " " + st.keyDesc.Render(desc)
}
