package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/syntax-syndicate/chatshell/internal/transcript"
)

// entry is one renderable transcript item, either a chat message or a
// completed form submission.
type entry struct {
	role    string
	content string
	form    string
	values  map[string]any
	at      time.Time
}

// MessageList renders the session transcript: chat messages with markdown
// bodies and completed form submissions as key/value blocks. The list sticks
// to the bottom unless the user scrolls up.
type MessageList struct {
	entries []entry
	offset  int  // lines scrolled up from the bottom
	follow  bool // stick to newest content
	width   int
	height  int
}

// NewMessageList creates an empty transcript view.
func NewMessageList() *MessageList {
	return &MessageList{follow: true}
}

// SetSize updates the viewport dimensions.
func (l *MessageList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Len returns the number of transcript entries.
func (l *MessageList) Len() int {
	return len(l.entries)
}

// Clear drops all entries from the view. The stored transcript is untouched.
func (l *MessageList) Clear() {
	l.entries = nil
	l.offset = 0
	l.follow = true
}

// LoadState replaces the list with a replayed transcript.
func (l *MessageList) LoadState(state *transcript.State) {
	l.entries = l.entries[:0]
	for _, m := range state.Messages {
		l.entries = append(l.entries, entry{role: m.Role, content: m.Content, at: m.CreatedAt})
	}
	for _, f := range state.Forms {
		l.entries = append(l.entries, entry{form: f.Form, values: f.Values, at: f.CreatedAt})
	}
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].at.Before(l.entries[j].at)
	})
	l.follow = true
	l.offset = 0
}

// AppendMessage adds one chat message to the bottom of the list.
func (l *MessageList) AppendMessage(m *transcript.Message) {
	l.entries = append(l.entries, entry{role: m.Role, content: m.Content, at: m.CreatedAt})
	if l.follow {
		l.offset = 0
	}
}

// AppendForm adds a completed form submission to the bottom of the list.
func (l *MessageList) AppendForm(f *transcript.FormRecord) {
	l.entries = append(l.entries, entry{form: f.Form, values: f.Values, at: f.CreatedAt})
	if l.follow {
		l.offset = 0
	}
}

// Update handles scroll keys.
func (l *MessageList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "pgup", "ctrl+u":
		l.offset += l.height / 2
		l.follow = false
	case "pgdown", "ctrl+d":
		l.offset -= l.height / 2
		if l.offset <= 0 {
			l.offset = 0
			l.follow = true
		}
	case "end":
		l.offset = 0
		l.follow = true
	}
	return nil
}

// renderEntry renders one transcript item at the current width.
func (l *MessageList) renderEntry(e entry) string {
	timestamp := styleMessageTime.Render(e.at.Format("15:04"))

	if e.form != "" {
		header := styleRoleSystem.Render("form:"+e.form) + " " + timestamp
		var lines []string
		keys := make([]string, 0, len(e.values))
		for k := range e.values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, e.values[k]))
		}
		body := styleFormRecord.Render(strings.Join(lines, "\n"))
		return header + "\n" + body
	}

	var roleStyle lipgloss.Style
	switch e.role {
	case "assistant":
		roleStyle = styleRoleAssistant
	case "system":
		roleStyle = styleRoleSystem
	default:
		roleStyle = styleRoleUser
	}
	header := roleStyle.Render(e.role) + " " + timestamp

	body := e.content
	if e.role == "assistant" {
		body = renderMarkdown(body, l.width-2)
	} else {
		body = wrapText(body, l.width-2)
	}
	return header + "\n" + styleMessageBody.Render(body)
}

// View renders the visible window of the transcript.
func (l *MessageList) View() string {
	if len(l.entries) == 0 {
		return styleEmptyState.Width(l.width).Render("No messages yet. Say something.")
	}

	var blocks []string
	for _, e := range l.entries {
		blocks = append(blocks, l.renderEntry(e))
	}
	full := strings.Join(blocks, "\n\n")

	lines := strings.Split(full, "\n")
	if len(lines) <= l.height {
		return full
	}

	// Clamp the scroll offset to the renderable range.
	maxOffset := len(lines) - l.height
	if l.offset > maxOffset {
		l.offset = maxOffset
	}
	end := len(lines) - l.offset
	start := end - l.height
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:end], "\n")
}

// Draw renders the transcript into area.
func (l *MessageList) Draw(scr uv.Screen, area uv.Rectangle) {
	l.SetSize(area.Dx(), area.Dy())
	uv.NewStyledString(l.View()).Draw(scr, area)
}
