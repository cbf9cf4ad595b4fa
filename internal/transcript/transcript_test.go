package transcript

import (
	"context"
	"strings"
	"testing"

	"github.com/syntax-syndicate/chatshell/internal/nats"
)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()

	ns, err := nats.StartEmbedded(t.TempDir())
	if err != nil {
		t.Fatalf("failed to start NATS: %v", err)
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		t.Fatalf("failed to connect to NATS: %v", err)
	}
	t.Cleanup(nc.Close)

	js, err := nats.CreateJetStream(nc)
	if err != nil {
		t.Fatalf("failed to create JetStream: %v", err)
	}

	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		t.Fatalf("failed to setup stream: %v", err)
	}

	return NewStore(js, stream), ctx
}

func TestMessageOperations(t *testing.T) {
	store, ctx := newTestStore(t)
	session := "test-session"

	t.Run("MessageAdd creates message", func(t *testing.T) {
		msg, err := store.MessageAdd(ctx, session, "user", "hello there")
		if err != nil {
			t.Fatalf("MessageAdd failed: %v", err)
		}
		if msg.ID == "" {
			t.Error("expected message ID to be set")
		}
		if msg.Role != "user" {
			t.Errorf("expected role 'user', got '%s'", msg.Role)
		}
		if msg.Content != "hello there" {
			t.Errorf("expected content 'hello there', got '%s'", msg.Content)
		}
	})

	t.Run("MessageAdd rejects empty content", func(t *testing.T) {
		_, err := store.MessageAdd(ctx, session, "user", "")
		if err == nil {
			t.Fatal("expected error for empty content")
		}
	})

	t.Run("MessageAdd validates role", func(t *testing.T) {
		_, err := store.MessageAdd(ctx, session, "robot", "beep")
		if err == nil {
			t.Fatal("expected error for invalid role")
		}
		if !strings.Contains(err.Error(), "invalid role") {
			t.Errorf("expected invalid role error, got: %v", err)
		}
	})

	t.Run("LoadState replays messages in order", func(t *testing.T) {
		if _, err := store.MessageAdd(ctx, session, "assistant", "hi back"); err != nil {
			t.Fatalf("MessageAdd failed: %v", err)
		}

		state, err := store.LoadState(ctx, session)
		if err != nil {
			t.Fatalf("LoadState failed: %v", err)
		}
		if len(state.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(state.Messages))
		}
		if state.Messages[0].Content != "hello there" {
			t.Errorf("expected first message 'hello there', got '%s'", state.Messages[0].Content)
		}
		if state.Messages[1].Role != "assistant" {
			t.Errorf("expected second message from assistant, got '%s'", state.Messages[1].Role)
		}
	})
}

func TestFormOperations(t *testing.T) {
	store, ctx := newTestStore(t)
	session := "form-session"

	t.Run("FormSubmit records values", func(t *testing.T) {
		record, err := store.FormSubmit(ctx, session, "person", map[string]any{
			"name": "Ada",
			"age":  float64(36),
		})
		if err != nil {
			t.Fatalf("FormSubmit failed: %v", err)
		}
		if record.Form != "person" {
			t.Errorf("expected form 'person', got '%s'", record.Form)
		}
	})

	t.Run("FormSubmit requires a name", func(t *testing.T) {
		_, err := store.FormSubmit(ctx, session, "", nil)
		if err == nil {
			t.Fatal("expected error for empty form name")
		}
	})

	t.Run("LoadState replays forms", func(t *testing.T) {
		state, err := store.LoadState(ctx, session)
		if err != nil {
			t.Fatalf("LoadState failed: %v", err)
		}
		if len(state.Forms) != 1 {
			t.Fatalf("expected 1 form record, got %d", len(state.Forms))
		}
		if state.Forms[0].Values["name"] != "Ada" {
			t.Errorf("expected name 'Ada', got %v", state.Forms[0].Values["name"])
		}
	})
}

func TestSessionClose(t *testing.T) {
	store, ctx := newTestStore(t)
	session := "closing-session"

	if _, err := store.MessageAdd(ctx, session, "user", "bye"); err != nil {
		t.Fatalf("MessageAdd failed: %v", err)
	}
	if err := store.SessionClose(ctx, session); err != nil {
		t.Fatalf("SessionClose failed: %v", err)
	}

	state, err := store.LoadState(ctx, session)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if !state.Closed {
		t.Error("expected session to be marked closed")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store, ctx := newTestStore(t)

	if _, err := store.MessageAdd(ctx, "session-a", "user", "only in a"); err != nil {
		t.Fatalf("MessageAdd failed: %v", err)
	}
	if _, err := store.MessageAdd(ctx, "session-b", "user", "only in b"); err != nil {
		t.Fatalf("MessageAdd failed: %v", err)
	}

	state, err := store.LoadState(ctx, "session-a")
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if len(state.Messages) != 1 {
		t.Fatalf("expected 1 message in session-a, got %d", len(state.Messages))
	}
	if state.Messages[0].Content != "only in a" {
		t.Errorf("expected session-a message, got '%s'", state.Messages[0].Content)
	}
}

func TestApplySkipsUnknownActions(t *testing.T) {
	state := &State{Session: "s"}
	state.Apply(Event{Type: nats.EventTypeMessage, Action: "delete", Data: "x"})
	if len(state.Messages) != 0 {
		t.Errorf("expected unknown action ignored, got %d messages", len(state.Messages))
	}
}
