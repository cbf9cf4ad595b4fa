package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/syntax-syndicate/chatshell/internal/config"
	_ "github.com/syntax-syndicate/chatshell/internal/tui/testfixtures"
	"github.com/syntax-syndicate/chatshell/internal/transcript"
	"github.com/syntax-syndicate/chatshell/internal/workspace"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Workspace:      "default",
		DataDir:        t.TempDir(),
		MaxSuggestions: 10,
		ArrayDelimiter: ",",
		Triggers:       "/@:#",
		CacheSize:      16,
	}
	sess := workspace.NewSession("test", "default", "")
	return NewApp(context.Background(), cfg, nil, sess, "http://localhost:0/mcp")
}

func TestAppUnknownCommand(t *testing.T) {
	a := newTestApp(t)

	cmd := a.handleCommand("bogus")
	if cmd == nil {
		t.Fatal("Expected a command for unknown slash command")
	}
	msg, ok := cmd().(messageAddedMsg)
	if !ok {
		t.Fatalf("Expected messageAddedMsg, got %T", cmd())
	}
	if msg.message.Role != "system" {
		t.Errorf("Expected system role, got %q", msg.message.Role)
	}
	if !strings.Contains(msg.message.Content, "unknown command") {
		t.Errorf("Expected unknown-command note, got %q", msg.message.Content)
	}
}

func TestAppHelpCommand(t *testing.T) {
	a := newTestApp(t)

	cmd := a.handleCommand("help")
	msg := cmd().(messageAddedMsg)
	if !strings.Contains(msg.message.Content, "/config") {
		t.Errorf("Expected help text to mention /config, got %q", msg.message.Content)
	}
}

func TestAppPowerCommandAliases(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name string
		line string
		want string
	}{
		{"ws shows workspace", "ws", "workspace: default"},
		{"proj shows project", "proj", "project: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := a.handlePowerCommand(tt.line)
			if cmd == nil {
				t.Fatal("Expected a command")
			}
			msg, ok := cmd().(messageAddedMsg)
			if !ok {
				t.Fatalf("Expected messageAddedMsg, got %T", cmd())
			}
			if !strings.Contains(msg.message.Content, tt.want) {
				t.Errorf("Expected note containing %q, got %q", tt.want, msg.message.Content)
			}
		})
	}
}

func TestAppPowerClearEmptiesTranscriptView(t *testing.T) {
	a := newTestApp(t)
	a.messages.AppendMessage(&transcript.Message{Role: "user", Content: "hi"})

	if a.messages.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", a.messages.Len())
	}
	a.handlePowerCommand("clear")
	if a.messages.Len() != 0 {
		t.Errorf("Expected cleared view, got %d entries", a.messages.Len())
	}
}

func TestAppWorkspaceSwitch(t *testing.T) {
	a := newTestApp(t)

	cmd := a.handleCommand("workspace research")
	if cmd == nil {
		t.Fatal("Expected a command")
	}
	msg := cmd().(messageAddedMsg)
	if !strings.Contains(msg.message.Content, "switched to workspace") {
		t.Errorf("Expected switch note, got %q", msg.message.Content)
	}
	if a.session.Workspace != "research" {
		t.Errorf("Expected session workspace 'research', got %q", a.session.Workspace)
	}
}

func TestAppSettingsFormOpens(t *testing.T) {
	a := newTestApp(t)

	cmd := a.handleCommand("config")
	if cmd == nil {
		t.Fatal("Expected a focus command")
	}
	if a.form == nil || !a.form.IsVisible() {
		t.Fatal("Expected settings form dialog to be visible")
	}
	if a.form.form != "settings" {
		t.Errorf("Expected form name 'settings', got %q", a.form.form)
	}
	// Current config values seed the form drafts.
	if a.form.ctrl.Current() == nil {
		t.Fatal("Expected a current field in the settings form")
	}
}

func TestAppFormCancelledNote(t *testing.T) {
	a := newTestApp(t)

	cmd := a.handleFormDone(FormDoneMsg{Form: "person", Cancelled: true})
	msg := cmd().(messageAddedMsg)
	if !strings.Contains(msg.message.Content, "form cancelled") {
		t.Errorf("Expected cancellation note, got %q", msg.message.Content)
	}
}

func TestAppSettingsDiffConfirm(t *testing.T) {
	a := newTestApp(t)

	values := a.cfg.Values()
	values["max_suggestions"] = int64(25)

	a.confirmSettings(values)

	if !a.confirm.IsVisible() {
		t.Fatal("Expected confirm dialog with diff to be visible")
	}
	if !strings.Contains(a.confirm.body, "max_suggestions") {
		t.Errorf("Expected diff to mention max_suggestions, got %q", a.confirm.body)
	}
}

func TestAppSettingsUnchangedSkipsConfirm(t *testing.T) {
	a := newTestApp(t)

	cmd := a.confirmSettings(a.cfg.Values())
	if a.confirm.IsVisible() {
		t.Fatal("Expected no confirm dialog for identical values")
	}
	msg := cmd().(messageAddedMsg)
	if !strings.Contains(msg.message.Content, "unchanged") {
		t.Errorf("Expected unchanged note, got %q", msg.message.Content)
	}
}

func TestColorizeDiff(t *testing.T) {
	diff := "--- current\n+++ updated\n-old: 1\n+new: 2\n context"
	out := colorizeDiff(diff)
	if !strings.Contains(out, "old: 1") || !strings.Contains(out, "new: 2") {
		t.Errorf("Expected diff lines preserved, got %q", out)
	}
}
