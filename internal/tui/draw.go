package tui

import (
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// DrawText renders plain text at a position
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawStyled renders lipgloss-styled content at a position
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).Height(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// FillArea clears an area with a styled background
func FillArea(scr uv.Screen, area uv.Rectangle, style lipgloss.Style) {
	fill := style.Width(area.Dx()).Height(area.Dy()).Render("")
	uv.NewStyledString(fill).Draw(scr, area)
}

// DrawCentered renders pre-styled content centered within area and returns
// the rectangle it occupied.
func DrawCentered(scr uv.Screen, area uv.Rectangle, content string) uv.Rectangle {
	w := lipgloss.Width(content)
	h := lipgloss.Height(content)
	x := (area.Dx() - w) / 2
	y := (area.Dy() - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	target := uv.Rectangle{
		Min: uv.Position{X: area.Min.X + x, Y: area.Min.Y + y},
		Max: uv.Position{X: area.Min.X + x + w, Y: area.Min.Y + y + h},
	}
	uv.NewStyledString(content).Draw(scr, target)
	return target
}
