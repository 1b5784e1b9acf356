package ui

import (
	"fmt"
	"strings"

	"adminkit/internal/notify"
	"adminkit/internal/ui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	maxVisibleToasts = 3
	toastMinWidth    = 30
	toastMaxWidth    = 60
)

// toastLayers renders the active notifications bottom-right, newest lowest,
// stacked upward inside the body area.
func (m *App) toastLayers(st styles, bodyStart, bodyHeight int) []Layer {
	now := timeNow()
	active := m.center.Active(now)
	if len(active) > maxVisibleToasts {
		active = active[len(active)-maxVisibleToasts:]
	}

	bg := theme.Current().Background
	var layers []Layer
	offset := 0
	for i := len(active) - 1; i >= 0; i-- {
		n := active[i]
		content := renderToast(st, n, m.center.Remaining(n, now))
		_, h := blockDimensions(content)
		layers = append(layers, newToastLayer(content, m.width, bodyStart, bodyHeight-offset, bg))
		offset += h
		if offset >= bodyHeight {
			break
		}
	}
	return layers
}

func renderToast(st styles, n notify.Notification, remaining int) string {
	style, icon := st.toastInfo, "ℹ"
	switch n.Kind {
	case notify.Success:
		style, icon = st.toastOK, "✓"
	case notify.Failure:
		style, icon = st.toastFail, "⚠"
	}

	msg := icon + " " + ansi.Truncate(n.Message, toastMaxWidth-2, "…")
	countdown := fmt.Sprintf("[%ds]", remaining)
	width := max(lipgloss.Width(msg), toastMinWidth)
	padding := max(width-len(countdown), 0)
	return style.Render(msg + "\n" + strings.Repeat(" ", padding) + countdown)
}
