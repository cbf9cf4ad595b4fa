package tui

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/syntax-syndicate/chatshell/internal/completion"
)

// SubmitMsg is emitted when the user submits the input line.
type SubmitMsg struct {
	Text string
}

// suggestionsMsg carries an async completion result back to the Update loop.
// Seq ties the result to the request that produced it so stale responses can
// be dropped.
type suggestionsMsg struct {
	seq   uint64
	items []completion.Item
}

// maxDropdownRows caps how many suggestions render at once.
const maxDropdownRows = 10

// ChatInput is the single-line chat prompt with trigger-based completion.
// Typing after a trigger character issues an async provider request; the
// dropdown opens when results arrive and Tab or Enter applies the selected
// suggestion in place of the active token.
type ChatInput struct {
	input    textinput.Model
	resolver *completion.Resolver
	engine   *completion.Engine
	session  any

	token    completion.Token
	items    []completion.Item
	selected int
	open     bool

	width int
}

// NewChatInput creates the chat prompt wired to a completion engine.
func NewChatInput(resolver *completion.Resolver, engine *completion.Engine, session any) *ChatInput {
	ti := textinput.New()
	ti.Placeholder = "Type a message, / for commands, @ for context..."
	ti.Prompt = ""
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
	ti.SetWidth(60)

	return &ChatInput{
		input:    ti,
		resolver: resolver,
		engine:   engine,
		session:  session,
	}
}

// Init focuses the input.
func (c *ChatInput) Init() tea.Cmd {
	return c.input.Focus()
}

// SetWidth adjusts the input to the available width.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	inner := width - 4 // border and padding
	if inner < 10 {
		inner = 10
	}
	c.input.SetWidth(inner)
}

// Value returns the current input text.
func (c *ChatInput) Value() string {
	return c.input.Value()
}

// SetValue replaces the input text and moves the cursor to the end.
func (c *ChatInput) SetValue(text string) {
	c.input.SetValue(text)
	c.input.SetCursor(len([]rune(text)))
}

// DropdownOpen reports whether the suggestion dropdown is showing.
func (c *ChatInput) DropdownOpen() bool {
	return c.open
}

// Suggestions returns the current dropdown items.
func (c *ChatInput) Suggestions() []completion.Item {
	return c.items
}

// Selected returns the index of the highlighted suggestion.
func (c *ChatInput) Selected() int {
	return c.selected
}

// Update handles keyboard input and completion results.
func (c *ChatInput) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case suggestionsMsg:
		// Ignore results from superseded requests.
		if !c.engine.OnResult(msg.seq, msg.items) {
			return nil
		}
		c.items = c.engine.Items()
		c.selected = 0
		c.open = len(c.items) > 0
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up":
			if c.open {
				if c.selected > 0 {
					c.selected--
				}
				return nil
			}
		case "down":
			if c.open {
				if c.selected < len(c.items)-1 {
					c.selected++
				}
				return nil
			}
		case "tab":
			if c.open {
				return c.applySelected()
			}
			return nil
		case "enter":
			if c.open {
				return c.applySelected()
			}
			text := strings.TrimSpace(c.input.Value())
			if text == "" {
				return nil
			}
			c.input.SetValue("")
			// Invalidate any in-flight request so a late result cannot
			// reopen the dropdown over the cleared input.
			c.engine.Clear()
			c.closeDropdown()
			return func() tea.Msg {
				return SubmitMsg{Text: text}
			}
		case "esc":
			if c.open {
				c.closeDropdown()
				return nil
			}
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)

	// Re-resolve the active token after every edit.
	request := c.requestSuggestions()
	if request == nil {
		return cmd
	}
	return tea.Batch(cmd, request)
}

// applySelected splices the highlighted suggestion over the active token and
// re-resolves, so a suggestion ending in another trigger chains directly into
// the next completion.
func (c *ChatInput) applySelected() tea.Cmd {
	if c.selected < 0 || c.selected >= len(c.items) {
		return nil
	}
	item := c.items[c.selected]

	text, cursor := completion.Apply(c.input.Value(), c.input.Position(), c.token, item)
	c.input.SetValue(text)
	c.input.SetCursor(cursor)

	c.closeDropdown()
	return c.requestSuggestions()
}

// requestSuggestions resolves the token at the cursor and issues an async
// provider request for it. Returns nil when no token is active.
func (c *ChatInput) requestSuggestions() tea.Cmd {
	tok, ok := c.resolver.Resolve(c.input.Value(), c.input.Position())
	if !ok {
		c.engine.Clear()
		c.closeDropdown()
		return nil
	}

	c.token = tok
	seq := c.engine.Issue()
	engine := c.engine
	session := c.session
	return func() tea.Msg {
		items := engine.Resolve(context.Background(), tok, session)
		return suggestionsMsg{seq: seq, items: items}
	}
}

func (c *ChatInput) closeDropdown() {
	c.open = false
	c.items = nil
	c.selected = 0
}

// View renders the input line inside its border.
func (c *ChatInput) View() string {
	field := styleInputPrompt.Render("> ") + c.input.View()
	return styleInputField.Width(c.width - 2).Render(field)
}

// viewDropdown renders the suggestion list, or "" when closed.
func (c *ChatInput) viewDropdown() string {
	if !c.open {
		return ""
	}

	rows := len(c.items)
	if rows > maxDropdownRows {
		rows = maxDropdownRows
	}

	labelWidth := 0
	for _, item := range c.items[:rows] {
		if w := lipgloss.Width(item.Label); w > labelWidth {
			labelWidth = w
		}
	}

	var lines []string
	for i, item := range c.items[:rows] {
		label := item.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(item.Label))
		style := styleDropdownItem
		if i == c.selected {
			style = styleDropdownSelected
		}
		line := style.Render(label)
		if item.Kind != "" {
			line += styleDropdownKind.Render(" " + item.Kind)
		}
		lines = append(lines, line)
	}

	return styleDropdown.Render(strings.Join(lines, "\n"))
}

// Draw renders the input at the bottom of area, with the dropdown anchored
// directly above it.
func (c *ChatInput) Draw(scr uv.Screen, area uv.Rectangle) {
	view := c.View()
	height := lipgloss.Height(view)

	inputArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X, Y: area.Max.Y - height},
		Max: uv.Position{X: area.Max.X, Y: area.Max.Y},
	}
	uv.NewStyledString(view).Draw(scr, inputArea)

	dropdown := c.viewDropdown()
	if dropdown == "" {
		return
	}
	ddHeight := lipgloss.Height(dropdown)
	y := inputArea.Min.Y - ddHeight
	if y < area.Min.Y {
		y = area.Min.Y
	}
	ddArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X + 2, Y: y},
		Max: uv.Position{X: area.Max.X, Y: inputArea.Min.Y},
	}
	uv.NewStyledString(dropdown).Draw(scr, ddArea)
}
