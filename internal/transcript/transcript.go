// Package transcript stores chat history through JetStream event sourcing.
// Messages and completed form submissions are appended to an event log and
// the current transcript is rebuilt by reducing over the events.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"

	"github.com/syntax-syndicate/chatshell/internal/logger"
	"github.com/syntax-syndicate/chatshell/internal/nats"
)

// Event is one append-only entry in the transcript log.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Session   string          `json:"session"`
	Type      string          `json:"type"`   // message, form, control
	Action    string          `json:"action"` // add, submit, close
	Meta      json.RawMessage `json:"meta"`
	Data      string          `json:"data"`
}

// Store appends and replays transcript events for all sessions.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store over an existing stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// PublishEvent appends an event to the log under
// chatshell.{session}.{type}.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Session, event.Type)
	logger.Debug("Publishing event: session=%s type=%s action=%s", event.Session, event.Type, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// Message is one chat message in a session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FormRecord is one completed form submission.
type FormRecord struct {
	ID        string         `json:"id"`
	Form      string         `json:"form"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
}

// State is the transcript of one session, rebuilt from events.
type State struct {
	Session  string        `json:"session"`
	Messages []*Message    `json:"messages"`
	Forms    []*FormRecord `json:"forms"`
	Closed   bool          `json:"closed"`
}

// MessageAdd appends a chat message to the session transcript.
func (s *Store) MessageAdd(ctx context.Context, session, role, content string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s (must be user, assistant, or system)", role)
	}

	id := xid.New().String()
	now := time.Now()

	meta, _ := json.Marshal(map[string]any{"role": role})

	event := Event{
		ID:        id,
		Timestamp: now,
		Session:   session,
		Type:      nats.EventTypeMessage,
		Action:    "add",
		Meta:      meta,
		Data:      content,
	}
	if _, err := s.PublishEvent(ctx, event); err != nil {
		return nil, err
	}

	return &Message{ID: id, Role: role, Content: content, CreatedAt: now}, nil
}

// FormSubmit records a completed form's values in the transcript.
func (s *Store) FormSubmit(ctx context.Context, session, form string, values map[string]any) (*FormRecord, error) {
	if form == "" {
		return nil, fmt.Errorf("form name is required")
	}

	id := xid.New().String()
	now := time.Now()

	meta, err := json.Marshal(map[string]any{"form": form, "values": values})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form values: %w", err)
	}

	event := Event{
		ID:        id,
		Timestamp: now,
		Session:   session,
		Type:      nats.EventTypeForm,
		Action:    "submit",
		Meta:      meta,
	}
	if _, err := s.PublishEvent(ctx, event); err != nil {
		return nil, err
	}

	return &FormRecord{ID: id, Form: form, Values: values, CreatedAt: now}, nil
}

// SessionClose marks the session closed in the transcript.
func (s *Store) SessionClose(ctx context.Context, session string) error {
	event := Event{
		ID:      xid.New().String(),
		Session: session,
		Type:    nats.EventTypeControl,
		Action:  "close",
	}
	_, err := s.PublishEvent(ctx, event)
	return err
}

// LoadState replays the session's events and reduces them into the current
// transcript. Malformed events are skipped and acknowledged so they are not
// redelivered.
func (s *Store) LoadState(ctx context.Context, session string) (*State, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForSession(session),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	state := &State{Session: session}

	const batchSize = 1000
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				meta, _ := msg.Metadata()
				logger.Warn("Skipping malformed transcript event (seq=%d): %v", meta.Sequence.Stream, err)
				msg.Ack()
				continue
			}
			state.Apply(event)
			msg.Ack()
		}
		if count == 0 {
			break
		}
	}

	return state, nil
}

// Apply reduces one event into the state.
func (st *State) Apply(event Event) {
	switch event.Type {
	case nats.EventTypeMessage:
		if event.Action != "add" {
			return
		}
		var meta struct {
			Role string `json:"role"`
		}
		json.Unmarshal(event.Meta, &meta)
		if meta.Role == "" {
			meta.Role = "user"
		}
		st.Messages = append(st.Messages, &Message{
			ID:        event.ID,
			Role:      meta.Role,
			Content:   event.Data,
			CreatedAt: event.Timestamp,
		})

	case nats.EventTypeForm:
		if event.Action != "submit" {
			return
		}
		var meta struct {
			Form   string         `json:"form"`
			Values map[string]any `json:"values"`
		}
		json.Unmarshal(event.Meta, &meta)
		st.Forms = append(st.Forms, &FormRecord{
			ID:        event.ID,
			Form:      meta.Form,
			Values:    meta.Values,
			CreatedAt: event.Timestamp,
		})

	case nats.EventTypeControl:
		if event.Action == "close" {
			st.Closed = true
		}
	}
}

func isValidRole(role string) bool {
	switch role {
	case "user", "assistant", "system":
		return true
	default:
		return false
	}
}
