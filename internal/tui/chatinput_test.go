package tui

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/syntax-syndicate/chatshell/internal/completion"
	"github.com/syntax-syndicate/chatshell/internal/tui/testfixtures"
)

func newTestInput() *ChatInput {
	resolver := completion.NewResolver([]rune("/@:#"))
	engine := completion.DefaultEngine()
	return NewChatInput(resolver, engine, nil)
}

func TestChatInputSubmit(t *testing.T) {
	c := newTestInput()
	c.SetValue("hello world")

	cmd := c.Update(tea.KeyPressMsg{Text: "enter"})
	if cmd == nil {
		t.Fatal("Expected submit command, got nil")
	}

	msg := cmd()
	submit, ok := msg.(SubmitMsg)
	if !ok {
		t.Fatalf("Expected SubmitMsg, got %T", msg)
	}
	if submit.Text != "hello world" {
		t.Errorf("Expected submitted text 'hello world', got %q", submit.Text)
	}
	if c.Value() != "" {
		t.Errorf("Expected input cleared after submit, got %q", c.Value())
	}
}

func TestChatInputEmptySubmitIgnored(t *testing.T) {
	c := newTestInput()
	c.SetValue("   ")

	if cmd := c.Update(tea.KeyPressMsg{Text: "enter"}); cmd != nil {
		t.Error("Expected no command for whitespace-only submit")
	}
}

func TestChatInputSuggestionsOpenDropdown(t *testing.T) {
	c := newTestInput()
	c.SetValue("/w")

	tok, ok := c.resolver.Resolve(c.Value(), c.input.Position())
	if !ok {
		t.Fatal("Expected an active token for '/w'")
	}
	c.token = tok

	seq := c.engine.Issue()
	items := c.engine.Resolve(context.Background(), tok, nil)
	if len(items) == 0 {
		t.Fatal("Expected slash suggestions for query 'w'")
	}

	c.Update(suggestionsMsg{seq: seq, items: items})

	if !c.DropdownOpen() {
		t.Fatal("Expected dropdown to open after results arrive")
	}
	if c.Selected() != 0 {
		t.Errorf("Expected selection to reset to 0, got %d", c.Selected())
	}
}

func TestChatInputStaleSuggestionsDropped(t *testing.T) {
	c := newTestInput()
	c.SetValue("/w")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok

	stale := c.engine.Issue()
	fresh := c.engine.Issue()

	items := c.engine.Resolve(context.Background(), tok, nil)

	// Result for the superseded request must be ignored.
	c.Update(suggestionsMsg{seq: stale, items: items})
	if c.DropdownOpen() {
		t.Fatal("Expected stale result to be dropped")
	}

	c.Update(suggestionsMsg{seq: fresh, items: items})
	if !c.DropdownOpen() {
		t.Fatal("Expected fresh result to open the dropdown")
	}
}

func TestChatInputDropdownNavigation(t *testing.T) {
	c := newTestInput()
	c.SetValue("/")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	items := c.engine.Resolve(context.Background(), tok, nil)
	c.Update(suggestionsMsg{seq: seq, items: items})

	if len(c.Suggestions()) < 2 {
		t.Fatalf("Need at least 2 suggestions, got %d", len(c.Suggestions()))
	}

	c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Selected() != 1 {
		t.Errorf("Expected selection 1 after down, got %d", c.Selected())
	}

	c.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if c.Selected() != 0 {
		t.Errorf("Expected selection 0 after up, got %d", c.Selected())
	}

	// Up at the top stays put.
	c.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if c.Selected() != 0 {
		t.Errorf("Expected selection pinned at 0, got %d", c.Selected())
	}
}

func TestChatInputTabAppliesSuggestion(t *testing.T) {
	c := newTestInput()
	c.SetValue("/wo")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	items := c.engine.Resolve(context.Background(), tok, nil)
	c.Update(suggestionsMsg{seq: seq, items: items})

	if !c.DropdownOpen() {
		t.Fatal("Expected dropdown open before apply")
	}

	c.Update(tea.KeyPressMsg{Text: "tab"})

	if c.Value() != "/workspace " {
		t.Errorf("Expected '/workspace ' after apply, got %q", c.Value())
	}
	if c.DropdownOpen() {
		t.Error("Expected dropdown closed after apply")
	}
}

func TestChatInputEnterAppliesWhenOpen(t *testing.T) {
	c := newTestInput()
	c.SetValue("/qu")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	items := c.engine.Resolve(context.Background(), tok, nil)
	c.Update(suggestionsMsg{seq: seq, items: items})

	// Enter applies the suggestion instead of submitting.
	c.Update(tea.KeyPressMsg{Text: "enter"})

	if c.Value() != "/quit " {
		t.Errorf("Expected '/quit ' after enter-apply, got %q", c.Value())
	}
}

func TestChatInputEscClosesDropdown(t *testing.T) {
	c := newTestInput()
	c.SetValue("/w")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	c.Update(suggestionsMsg{seq: seq, items: c.engine.Resolve(context.Background(), tok, nil)})

	c.Update(tea.KeyPressMsg{Text: "esc"})

	if c.DropdownOpen() {
		t.Error("Expected esc to close the dropdown")
	}
	if c.Value() != "/w" {
		t.Errorf("Expected input text untouched, got %q", c.Value())
	}
}

func TestChatInputSubmitInvalidatesInFlight(t *testing.T) {
	c := newTestInput()
	c.SetValue("/w")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	items := c.engine.Resolve(context.Background(), tok, nil)

	// The user submits before the provider result lands.
	c.Update(tea.KeyPressMsg{Text: "enter"})
	if c.Value() != "" {
		t.Fatalf("Expected input cleared after submit, got %q", c.Value())
	}

	c.Update(suggestionsMsg{seq: seq, items: items})
	if c.DropdownOpen() {
		t.Fatal("Expected in-flight result to be dropped after submit")
	}
}

func TestChatInputDrawShowsDropdown(t *testing.T) {
	c := newTestInput()
	c.SetWidth(testfixtures.TestTermWidth)
	c.SetValue("/w")

	tok, _ := c.resolver.Resolve(c.Value(), c.input.Position())
	c.token = tok
	seq := c.engine.Issue()
	c.Update(suggestionsMsg{seq: seq, items: c.engine.Resolve(context.Background(), tok, nil)})

	frame := testfixtures.RenderFrame(func(canvas uv.ScreenBuffer) {
		c.Draw(canvas, uv.Rect(0, 0, testfixtures.TestTermWidth, testfixtures.TestTermHeight))
	})
	if !strings.Contains(frame, "workspace") {
		t.Error("Expected dropdown suggestion in rendered frame")
	}
}

func TestChatInputMidSentenceTrigger(t *testing.T) {
	c := newTestInput()
	c.SetValue("tell me about @re")

	tok, ok := c.resolver.Resolve(c.Value(), c.input.Position())
	if !ok {
		t.Fatal("Expected token for '@re' after whitespace")
	}
	if tok.Trigger != '@' {
		t.Errorf("Expected '@' trigger, got %q", tok.Trigger)
	}
	if tok.Query != "re" {
		t.Errorf("Expected query 're', got %q", tok.Query)
	}
}
