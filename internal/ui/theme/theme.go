// Package theme provides the semantic color palettes for the adminkit console.
package theme

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the semantic colors used across the console. Every color is
// adaptive so light terminals get a readable variant.
type Palette struct {
	Primary   lipgloss.AdaptiveColor // header, focused borders
	Accent    lipgloss.AdaptiveColor // IDs, selection markers
	Error     lipgloss.AdaptiveColor // failures, destructive prompts
	Warning   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	TextMuted lipgloss.AdaptiveColor

	Background          lipgloss.AdaptiveColor
	BackgroundSecondary lipgloss.AdaptiveColor // overlays, selected rows

	BorderNormal  lipgloss.AdaptiveColor
	BorderFocused lipgloss.AdaptiveColor
}

// DefaultName is used when no theme has been configured.
const DefaultName = "tokyonight"

var registry = struct {
	sync.RWMutex
	palettes map[string]Palette
	current  string
}{palettes: map[string]Palette{}}

// Register adds a palette. The first registration becomes current.
func Register(name string, p Palette) {
	registry.Lock()
	defer registry.Unlock()
	registry.palettes[name] = p
	if registry.current == "" {
		registry.current = name
	}
}

// Set switches to a registered palette and reports whether it exists.
func Set(name string) bool {
	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.palettes[name]; !ok {
		return false
	}
	registry.current = name
	return true
}

// Current returns the active palette.
func Current() Palette {
	registry.RLock()
	defer registry.RUnlock()
	return registry.palettes[registry.current]
}

// CurrentName returns the name of the active palette.
func CurrentName() string {
	registry.RLock()
	defer registry.RUnlock()
	return registry.current
}

// Available lists registered palette names, sorted.
func Available() []string {
	registry.RLock()
	defer registry.RUnlock()
	return sortedNames()
}

// Cycle advances to the next palette in sorted order and returns its name.
func Cycle() string {
	registry.Lock()
	defer registry.Unlock()
	names := sortedNames()
	if len(names) == 0 {
		return ""
	}
	next := 0
	for i, name := range names {
		if name == registry.current {
			next = (i + 1) % len(names)
			break
		}
	}
	registry.current = names[next]
	return registry.current
}

func sortedNames() []string {
	names := make([]string, 0, len(registry.palettes))
	for name := range registry.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
