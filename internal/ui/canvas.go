package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// Canvas is a lightweight helper around cellbuf.Screen that lets us compose
// lipgloss-rendered strings into a cell buffer before turning the frame back
// into a string for Bubble Tea.
type Canvas struct {
	screen *cellbuf.Screen
	writer *cellbuf.ScreenWriter
	width  int
	height int
	x, y   int
}

// NewCanvas allocates a width x height canvas.
func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	screen := cellbuf.NewScreen(io.Discard, width, height, &cellbuf.ScreenOptions{
		ShowCursor: false,
		AltScreen:  false,
	})
	return &Canvas{
		screen: screen,
		writer: cellbuf.NewScreenWriter(screen),
		width:  width,
		height: height,
	}
}

// SetOffset positions the canvas when it is composed onto another.
func (c *Canvas) SetOffset(x, y int) {
	if c == nil {
		return
	}
	c.x, c.y = max(x, 0), max(y, 0)
}

// Offset returns the composition position.
func (c *Canvas) Offset() (int, int) {
	if c == nil {
		return 0, 0
	}
	return c.x, c.y
}

// Fill paints the entire canvas with the provided background color.
func (c *Canvas) Fill(bg lipgloss.TerminalColor) {
	if c == nil {
		return
	}
	fill := lipgloss.NewStyle().
		Background(bg).
		Width(c.width).
		Height(c.height).
		Render("")
	c.DrawStringAt(0, 0, fill)
}

// DrawStringAt writes the provided block starting at x,y. Newlines are
// normalized so each line begins at column x.
func (c *Canvas) DrawStringAt(x, y int, content string) {
	if content == "" || c == nil || c.writer == nil {
		return
	}
	for i, line := range splitLines(content) {
		row := y + i
		if row >= c.height {
			break
		}
		if line == "" || row < 0 {
			continue
		}
		c.writer.PrintCropAt(x, row, line, "")
	}
}

// Compose draws each layer's canvas over this one at the layer's offset.
func (c *Canvas) Compose(layers ...Layer) {
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		top := layer.Render()
		if top == nil {
			continue
		}
		x, y := top.Offset()
		c.DrawStringAt(x, y, top.Render())
	}
}

// Render returns the composed frame as a newline-delimited string suitable for
// Bubble Tea consumption.
func (c *Canvas) Render() string {
	if c == nil || c.screen == nil {
		return ""
	}
	raw := cellbuf.Render(c.screen)
	_ = c.screen.Close()
	return strings.ReplaceAll(raw, "\r\n", "\n")
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// Layer is an overlay or toast that can render itself into a canvas
// positioned over the main frame.
type Layer interface {
	Render() *Canvas
}

// LayerFunc is an adapter to allow ordinary functions to act as layers.
type LayerFunc func() *Canvas

// Render implements Layer for LayerFunc.
func (f LayerFunc) Render() *Canvas {
	return f()
}

// blockLayer places content on a canvas of its own size at x,y.
func blockLayer(content string, bg lipgloss.TerminalColor, place func(w, h int) (int, int)) Layer {
	return LayerFunc(func() *Canvas {
		if strings.TrimSpace(content) == "" {
			return nil
		}
		w, h := blockDimensions(content)
		canvas := NewCanvas(w, h)
		canvas.Fill(bg)
		canvas.DrawStringAt(0, 0, content)
		canvas.SetOffset(place(w, h))
		return canvas
	})
}

func newCenteredLayer(content string, width, height, topMargin, bottomMargin int, bg lipgloss.TerminalColor) Layer {
	return blockLayer(content, bg, func(w, h int) (int, int) {
		return centeredOffsets(width, height, w, h, topMargin, bottomMargin)
	})
}

func newToastLayer(content string, width, bodyStart, bodyHeight int, bg lipgloss.TerminalColor) Layer {
	return blockLayer(content, bg, func(w, h int) (int, int) {
		x := width - w - 2
		y := bodyStart + bodyHeight - h - 1
		if y < bodyStart {
			y = bodyStart
		}
		return x, y
	})
}

func blockDimensions(content string) (int, int) {
	lines := splitLines(content)
	width := 0
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}
	return max(width, 1), max(len(lines), 1)
}

func centeredOffsets(containerWidth, containerHeight, contentWidth, contentHeight, topMargin, bottomMargin int) (int, int) {
	topMargin, bottomMargin = max(topMargin, 0), max(bottomMargin, 0)

	usableHeight := max(containerHeight-topMargin-bottomMargin, contentHeight)
	y := topMargin + (usableHeight-contentHeight)/2
	if maxY := containerHeight - bottomMargin - contentHeight; y > maxY {
		y = maxY
	}
	y = max(y, topMargin, 0)

	x := max((containerWidth-contentWidth)/2, 0)
	return x, y
}
