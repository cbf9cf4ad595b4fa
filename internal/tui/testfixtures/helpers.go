// Package testfixtures holds shared helpers for TUI component tests.
package testfixtures

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
)

func init() {
	// Ascii profile disables color output so rendered frames stay stable
	// across CI and platforms.
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// RenderFrame renders into a canonical-size screen buffer and returns the
// resulting frame, for asserting on component Draw output.
func RenderFrame(renderFn func(canvas uv.ScreenBuffer)) string {
	canvas := uv.NewScreenBuffer(TestTermWidth, TestTermHeight)
	renderFn(canvas)
	return canvas.Render()
}
