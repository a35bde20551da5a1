package dto

import (
	"github.com/google/uuid"
)

// PublishEmbedNoteMessage is the payload handed to the embedding consumer
// after a successful transcription.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}

// FindSimilarRequest carries the similarity query bounds.
type FindSimilarRequest struct {
	NoteId    uuid.UUID `json:"note_id" validate:"required"`
	Threshold float64   `json:"threshold" validate:"gte=0,lte=1"`
	Limit     int       `json:"limit" validate:"gte=1,lte=100"`
}

// RelatedNoteResponse is one derived "related notes" edge. The relation is
// symmetric; direction only matters for presentation.
type RelatedNoteResponse struct {
	NoteId          uuid.UUID `json:"note_id"`
	RelatedNoteId   uuid.UUID `json:"related_note_id"`
	SimilarityScore float64   `json:"similarity_score"`
	Reason          string    `json:"reason"`
}

// QueueStatusResponse exposes pipeline observability to callers.
type QueueStatusResponse struct {
	QueueLength  int  `json:"queue_length"`
	IsProcessing bool `json:"is_processing"`
}

// IllustrationResult is a tagged success/failure result. Expected failure
// modes (missing config, provider errors, empty predictions) never surface
// as Go errors so the caller can continue without crashing the pipeline.
type IllustrationResult struct {
	Success        bool   `json:"success"`
	ImageReference string `json:"image_reference,omitempty"`
	Status         int    `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
}
