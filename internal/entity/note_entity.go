package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingStatus is the per-note pipeline state machine:
// pending -> processing -> {completed, failed}. Terminal states are not
// auto-retried; a new job must be enqueued to retry.
type EmbeddingStatus string

const (
	EmbeddingStatusPending    EmbeddingStatus = "pending"
	EmbeddingStatusProcessing EmbeddingStatus = "processing"
	EmbeddingStatusCompleted  EmbeddingStatus = "completed"
	EmbeddingStatusFailed     EmbeddingStatus = "failed"
)

// Note is the aggregate mutated by the pipeline.
// Embedding is non-nil iff EmbeddingStatus == completed.
type Note struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	AudioReference  string
	Transcript      string
	Embedding       []float32
	EmbeddingStatus EmbeddingStatus
	ImageReference  string
	DurationSeconds float64 // best-effort estimate, not authoritative
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}

// HasEmbedding reports whether the note is eligible for similarity queries.
func (n *Note) HasEmbedding() bool {
	return len(n.Embedding) > 0 && n.EmbeddingStatus == EmbeddingStatusCompleted
}
