package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName = "chatshell_events"

	// Event types appended to the transcript stream.
	EventTypeMessage = "message"
	EventTypeForm    = "form"
	EventTypeControl = "control"
)

// SubjectForSession returns the wildcard subject for all events in a
// session. Example: "chatshell.mysession.>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("chatshell.%s.>", session)
}

// SubjectForEvent returns the subject for one event type in a session.
// Example: "chatshell.mysession.message"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("chatshell.%s.%s", session, eventType)
}

// SetupStream creates or updates the transcript stream. One stream holds
// every session's events, with 90-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"chatshell.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}

// CreateConsumer creates a durable consumer that replays the event history
// from the beginning with explicit acknowledgment.
func CreateConsumer(ctx context.Context, stream jetstream.Stream, name string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       name,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
}
