package ui

import (
	"strings"

	"adminkit/internal/confirm"
	"adminkit/internal/grid"
	"adminkit/internal/ui/theme"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// styles is derived from the active palette on every frame so theme cycling
// takes effect immediately.
type styles struct {
	header      lipgloss.Style
	headerInfo  lipgloss.Style
	pane        lipgloss.Style
	paneFocused lipgloss.Style
	sidebarItem lipgloss.Style
	sidebarSel  lipgloss.Style
	muted       lipgloss.Style
	keyPill     lipgloss.Style
	keyDesc     lipgloss.Style
	toastOK     lipgloss.Style
	toastFail   lipgloss.Style
	toastInfo   lipgloss.Style
	overlay     lipgloss.Style
	title       lipgloss.Style
	errorText   lipgloss.Style
}

func currentStyles() styles {
	p := theme.Current()
	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Background(p.Background).
		Foreground(p.Text).
		Padding(0, 1)
	return styles{
		header:      lipgloss.NewStyle().Foreground(p.Background).Background(p.Primary).Bold(true).Padding(0, 1),
		headerInfo:  lipgloss.NewStyle().Foreground(p.TextMuted),
		pane:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.BorderNormal),
		paneFocused: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(p.BorderFocused),
		sidebarItem: lipgloss.NewStyle().Foreground(p.Text).PaddingLeft(1),
		sidebarSel:  lipgloss.NewStyle().Foreground(p.Accent).Background(p.BackgroundSecondary).Bold(true).PaddingLeft(1),
		muted:       lipgloss.NewStyle().Foreground(p.TextMuted),
		keyPill:     lipgloss.NewStyle().Foreground(p.Background).Background(p.Primary).Bold(true),
		keyDesc:     lipgloss.NewStyle().Foreground(p.TextMuted),
		toastOK:     toast.BorderForeground(p.Success),
		toastFail:   toast.BorderForeground(p.Error),
		toastInfo:   toast.BorderForeground(p.Info),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.BorderFocused).
			Background(p.BackgroundSecondary).
			Padding(0, 2),
		title:     lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(p.Error),
	}
}

// gridStyles maps the active palette onto the record grid.
func gridStyles() grid.Styles {
	p := theme.Current()
	return grid.Styles{
		Header:   lipgloss.NewStyle().Foreground(p.TextMuted).Bold(true),
		Row:      lipgloss.NewStyle().Foreground(p.Text),
		Selected: lipgloss.NewStyle().Background(p.BackgroundSecondary).Foreground(p.Accent).Bold(true),
		Hint:     lipgloss.NewStyle().Foreground(p.TextMuted),
	}
}

// confirmColors maps the active palette onto the delete prompt.
func confirmColors() confirm.Colors {
	p := theme.Current()
	return confirm.Colors{
		Surface:    p.BackgroundSecondary,
		Text:       p.Text,
		Muted:      p.TextMuted,
		Danger:     p.Error,
		Warning:    p.Warning,
		Accent:     p.Primary,
		AccentText: p.Background,
	}
}

func buildMarkdownRenderer(format string, width int) func(string) string {
	if width < 10 {
		width = 10
	}
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	switch style {
	case "plain":
		return fallback
	case "light":
	default:
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
