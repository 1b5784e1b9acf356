package theme

import "github.com/charmbracelet/lipgloss"

func c(dark, light string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: dark, Light: light}
}

func init() {
	Register("tokyonight", Palette{
		Primary:             c("#82aaff", "#2e7de9"),
		Accent:              c("#ffc777", "#8c6c3e"),
		Error:               c("#ff757f", "#f52a65"),
		Warning:             c("#ff966c", "#b15c00"),
		Success:             c("#c3e88d", "#587539"),
		Info:                c("#7dcfff", "#0db9d7"),
		Text:                c("#c8d3f5", "#3760bf"),
		TextMuted:           c("#636da6", "#848cb5"),
		Background:          c("#222436", "#e1e2e7"),
		BackgroundSecondary: c("#2f334d", "#c8c9ce"),
		BorderNormal:        c("#3b4261", "#a8aecb"),
		BorderFocused:       c("#82aaff", "#2e7de9"),
	})
	Register("gruvbox", Palette{
		Primary:             c("#83a598", "#076678"),
		Accent:              c("#fabd2f", "#b57614"),
		Error:               c("#fb4934", "#9d0006"),
		Warning:             c("#fe8019", "#af3a03"),
		Success:             c("#b8bb26", "#79740e"),
		Info:                c("#83a598", "#076678"),
		Text:                c("#ebdbb2", "#3c3836"),
		TextMuted:           c("#a89984", "#7c6f64"),
		Background:          c("#282828", "#fbf1c7"),
		BackgroundSecondary: c("#504945", "#ebdbb2"),
		BorderNormal:        c("#504945", "#bdae93"),
		BorderFocused:       c("#83a598", "#076678"),
	})
	Register("mono", Palette{
		Primary:             c("#d0d0d0", "#303030"),
		Accent:              c("#ffffff", "#000000"),
		Error:               c("#ff6f6f", "#b00020"),
		Warning:             c("#e0c060", "#8a6d00"),
		Success:             c("#9ad08a", "#2e6b1f"),
		Info:                c("#9ab8d0", "#1f4e6b"),
		Text:                c("#e4e4e4", "#1c1c1c"),
		TextMuted:           c("#8a8a8a", "#6c6c6c"),
		Background:          c("#1c1c1c", "#f4f4f4"),
		BackgroundSecondary: c("#303030", "#dadada"),
		BorderNormal:        c("#4e4e4e", "#b2b2b2"),
		BorderFocused:       c("#d0d0d0", "#303030"),
	})
	Set(DefaultName)
}
