package tui

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/editor"

	"github.com/syntax-syndicate/chatshell/internal/schema"
	"github.com/syntax-syndicate/chatshell/internal/wizard"
)

// FormDoneMsg is emitted when a form dialog finishes, either with the
// collected values or as a cancellation.
type FormDoneMsg struct {
	Form      string
	Values    map[string]any
	Cancelled bool
}

// fieldEditedMsg carries text back from the external editor.
type fieldEditedMsg struct {
	content string
}

// FormDialog is a modal that walks the user through a schema-driven form one
// field at a time. Enter submits the current field, Escape steps back
// (cancelling from the first field), and enum/oneOf fields render as a
// selectable option menu.
type FormDialog struct {
	form    string
	model   *schema.Model
	ctrl    *wizard.Controller
	input   textinput.Model
	visible bool

	optionIndex int // highlighted option for enum/oneOf fields

	tmpFile string
	width   int
	height  int
}

// NewFormDialog creates a dialog for the given schema model. Seed values
// prefill matching fields.
func NewFormDialog(form string, m *schema.Model, seed map[string]any, delim string) *FormDialog {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = ""
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorText),
			Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
			Prompt:      lipgloss.NewStyle().Foreground(colorTertiary),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorSubtext0),
			Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
			Prompt:      lipgloss.NewStyle().Foreground(colorOverlay0),
		},
		Cursor: textinput.CursorStyle{
			Color: colorPrimary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(50)

	d := &FormDialog{
		form:  form,
		model: m,
		ctrl: wizard.New(m,
			wizard.WithSeed(seed),
			wizard.WithArrayDelimiter(delim),
		),
		input:  ti,
		width:  64,
		height: 18,
	}
	d.syncField()
	return d
}

// Show makes the dialog visible and focuses the input.
func (d *FormDialog) Show() tea.Cmd {
	d.visible = true
	return d.input.Focus()
}

// Close hides the dialog without touching the wizard state.
func (d *FormDialog) Close() {
	d.visible = false
	d.input.Blur()
	if d.tmpFile != "" {
		_ = os.Remove(d.tmpFile)
		d.tmpFile = ""
	}
}

// IsVisible returns whether the dialog is showing.
func (d *FormDialog) IsVisible() bool {
	return d.visible
}

// Controller exposes the underlying wizard for inspection.
func (d *FormDialog) Controller() *wizard.Controller {
	return d.ctrl
}

// SetSize updates the dialog's knowledge of screen size.
func (d *FormDialog) SetSize(width, height int) {
	if width > 20 {
		d.width = min(64, width-4)
	}
	if height > 10 {
		d.height = min(18, height-4)
	}
	d.input.SetWidth(d.width - 10)
}

// syncField refreshes the input and option cursor for the current field.
// Called after every submit or back step.
func (d *FormDialog) syncField() {
	f := d.ctrl.Current()
	if f == nil {
		return
	}

	draft := d.ctrl.Draft()
	d.optionIndex = 0

	switch f.Type {
	case schema.TypeEnum:
		for i, lit := range f.Enum {
			if schema.FormatValue(lit, nil) == draft {
				d.optionIndex = i
				break
			}
		}
		d.input.SetValue("")
	case schema.TypeOneOf:
		for i, opt := range f.OneOf {
			if opt.Const == draft {
				d.optionIndex = i
				break
			}
		}
		d.input.SetValue("")
	default:
		d.input.SetValue(draft)
		d.input.SetCursor(len([]rune(draft)))
	}
}

// hasOptions reports whether the current field renders as a menu.
func (d *FormDialog) hasOptions() bool {
	f := d.ctrl.Current()
	if f == nil {
		return false
	}
	return f.Type == schema.TypeEnum || f.Type == schema.TypeOneOf
}

// optionCount returns the number of menu entries for the current field.
func (d *FormDialog) optionCount() int {
	f := d.ctrl.Current()
	if f == nil {
		return 0
	}
	switch f.Type {
	case schema.TypeEnum:
		return len(f.Enum)
	case schema.TypeOneOf:
		return len(f.OneOf)
	}
	return 0
}

// selectedLiteral returns the raw value the highlighted option stands for.
func (d *FormDialog) selectedLiteral() string {
	f := d.ctrl.Current()
	if f == nil {
		return ""
	}
	switch f.Type {
	case schema.TypeEnum:
		if d.optionIndex < len(f.Enum) {
			return schema.FormatValue(f.Enum[d.optionIndex], nil)
		}
	case schema.TypeOneOf:
		if d.optionIndex < len(f.OneOf) {
			return f.OneOf[d.optionIndex].Const
		}
	}
	return ""
}

// Update handles keyboard input for the dialog.
func (d *FormDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.visible {
		return nil
	}

	switch msg := msg.(type) {
	case fieldEditedMsg:
		if d.tmpFile != "" {
			_ = os.Remove(d.tmpFile)
			d.tmpFile = ""
		}
		content := strings.TrimRight(msg.content, "\n")
		d.input.SetValue(content)
		d.input.SetCursor(len([]rune(content)))
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			d.ctrl.Back()
			if d.ctrl.Phase() == wizard.PhaseCancelled {
				return d.finish()
			}
			d.syncField()
			return nil

		case "enter":
			raw := d.input.Value()
			if d.hasOptions() {
				raw = d.selectedLiteral()
			}
			d.ctrl.Submit(raw)
			switch d.ctrl.Phase() {
			case wizard.PhaseCompleted:
				return d.finish()
			case wizard.PhaseAwaitingField:
				if len(d.ctrl.Errors()) == 0 {
					d.syncField()
				}
			}
			return nil

		case "up":
			if d.hasOptions() && d.optionIndex > 0 {
				d.optionIndex--
				return nil
			}
		case "down":
			if d.hasOptions() && d.optionIndex < d.optionCount()-1 {
				d.optionIndex++
				return nil
			}

		case "ctrl+e":
			if !d.hasOptions() {
				return d.openEditor()
			}
			return nil
		}
	}

	if d.hasOptions() {
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

// finish hides the dialog and emits the outcome message.
func (d *FormDialog) finish() tea.Cmd {
	values, ok := d.ctrl.Result()
	form := d.form
	d.Close()
	return func() tea.Msg {
		return FormDoneMsg{Form: form, Values: values, Cancelled: !ok}
	}
}

// openEditor launches $EDITOR with the current field value for long text.
func (d *FormDialog) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "chatshell_field_*.txt")
	if err != nil {
		return nil // editor unavailable, keep inline editing
	}

	if _, err := tmpfile.WriteString(d.input.Value()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	d.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("chatshell", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		d.tmpFile = ""
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return fieldEditedMsg{content: string(content)}
	})
}

// View renders the dialog content.
func (d *FormDialog) View() string {
	if !d.visible {
		return ""
	}

	f := d.ctrl.Current()
	if f == nil {
		return ""
	}

	var sections []string

	title := styleFormTitle.Render(d.form)
	progress := styleFormProgress.Render(
		fmt.Sprintf("field %d of %d", d.ctrl.Cursor()+1, d.model.Len()))
	sections = append(sections, title+"  "+progress, "")

	label := styleFormLabel.Render(f.Label())
	if f.Required {
		label += styleFormRequired.Render(" *")
	}
	sections = append(sections, label)
	if f.Description != "" {
		sections = append(sections, styleFormDescription.Render(f.Description))
	}
	sections = append(sections, "")

	switch f.Type {
	case schema.TypeEnum:
		for i, lit := range f.Enum {
			style := styleFormOption
			if i == d.optionIndex {
				style = styleFormOptionSelected
			}
			sections = append(sections, style.Render(schema.FormatValue(lit, nil)))
		}
	case schema.TypeOneOf:
		for i, opt := range f.OneOf {
			style := styleFormOption
			if i == d.optionIndex {
				style = styleFormOptionSelected
			}
			sections = append(sections, style.Render(opt.Title))
		}
	default:
		sections = append(sections, d.input.View())
	}

	for _, msg := range d.ctrl.Errors() {
		sections = append(sections, styleFormError.Render("✗ "+msg))
	}

	sections = append(sections, "",
		styleFormHint.Render("enter accept · esc back · ctrl+e editor"))

	return strings.Join(sections, "\n")
}

// Draw renders the dialog centered on the screen buffer.
func (d *FormDialog) Draw(scr uv.Screen, area uv.Rectangle) {
	if !d.visible {
		return
	}

	content := styleFormContainer.Width(d.width).Render(d.View())
	DrawCentered(scr, area, content)
}
