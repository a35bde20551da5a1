package events

import "time"

// Pipeline lifecycle event codes.
const (
	NoteTranscribed        = "NOTE_TRANSCRIBED"
	NoteEmbeddingCompleted = "NOTE_EMBEDDING_COMPLETED"
	NoteEmbeddingFailed    = "NOTE_EMBEDDING_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_TRANSCRIBED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used by the pipeline.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
