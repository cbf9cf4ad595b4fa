package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// ConfirmDialog is a modal with a message body and confirm/cancel buttons.
// The body may be multi-line, which is how configuration changes show their
// diff before being written.
type ConfirmDialog struct {
	title     string
	body      string
	confirm   string
	cancel    string
	visible   bool
	focusYes  bool
	onConfirm func() tea.Cmd
	onCancel  func() tea.Cmd
}

// NewConfirmDialog creates a hidden dialog with default button labels.
func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{
		confirm: "Apply",
		cancel:  "Cancel",
	}
}

// Show displays the dialog. Either callback may be nil.
func (d *ConfirmDialog) Show(title, body string, onConfirm, onCancel func() tea.Cmd) {
	d.title = title
	d.body = body
	d.visible = true
	d.focusYes = true
	d.onConfirm = onConfirm
	d.onCancel = onCancel
}

// Hide closes the dialog without running a callback.
func (d *ConfirmDialog) Hide() {
	d.visible = false
}

// IsVisible returns whether the dialog is showing.
func (d *ConfirmDialog) IsVisible() bool {
	return d.visible
}

// SetLabels overrides the button labels.
func (d *ConfirmDialog) SetLabels(confirm, cancel string) {
	d.confirm = confirm
	d.cancel = cancel
}

// Update handles dialog input.
func (d *ConfirmDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "left", "right", "tab":
		d.focusYes = !d.focusYes
	case "esc":
		d.Hide()
		if d.onCancel != nil {
			return d.onCancel()
		}
	case "enter":
		d.Hide()
		if d.focusYes {
			if d.onConfirm != nil {
				return d.onConfirm()
			}
		} else if d.onCancel != nil {
			return d.onCancel()
		}
	case "y":
		d.Hide()
		if d.onConfirm != nil {
			return d.onConfirm()
		}
	case "n":
		d.Hide()
		if d.onCancel != nil {
			return d.onCancel()
		}
	}
	return nil
}

// View renders the dialog content.
func (d *ConfirmDialog) View() string {
	if !d.visible {
		return ""
	}

	width := lipgloss.Width(d.body)
	if w := lipgloss.Width(d.title); w > width {
		width = w
	}
	if width < 24 {
		width = 24
	}

	yesStyle, noStyle := styleDialogButton, styleDialogButtonFocused
	if d.focusYes {
		yesStyle, noStyle = styleDialogButtonFocused, styleDialogButton
	}
	buttons := yesStyle.Render(d.confirm) + "  " + noStyle.Render(d.cancel)
	buttonLine := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(buttons)

	parts := []string{
		styleDialogTitle.Width(width).Align(lipgloss.Center).Render(d.title),
		"",
	}
	if d.body != "" {
		parts = append(parts, styleDialogBody.Render(d.body), "")
	}
	parts = append(parts, buttonLine)

	return strings.Join(parts, "\n")
}

// Draw renders the dialog centered on screen.
func (d *ConfirmDialog) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}
	DrawCentered(scr, area, styleDialogContainer.Render(d.View()))
}
