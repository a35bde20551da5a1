package contract

import (
	"context"

	"voicenotes-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredNote pairs a candidate note with its cosine similarity to the query
// vector (similarity = 1 - cosine distance).
type ScoredNote struct {
	Note       *entity.Note
	Similarity float64
}

// NoteRepository is the persistence boundary of the pipeline. The production
// implementation is Postgres + pgvector; an in-memory implementation backs
// tests and DB-less runs.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)

	// UpdateTranscript persists the transcript and duration estimate and
	// flips the note to the given status in one write.
	UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string, duration float64, status entity.EmbeddingStatus) error

	UpdateImageReference(ctx context.Context, id uuid.UUID, imageRef string) error
	UpdateEmbeddingStatus(ctx context.Context, id uuid.UUID, status entity.EmbeddingStatus) error

	// SetEmbedding stores the vector and marks the note completed in one
	// write, upholding the "embedding non-null iff completed" invariant.
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// SearchSimilarWithScore returns, for the target note's vector, every
	// other note with a non-null embedding scored by cosine similarity,
	// filtered to similarity >= threshold, ordered by similarity descending
	// (ties by note id), truncated to limit. The target itself is excluded.
	SearchSimilarWithScore(ctx context.Context, noteID uuid.UUID, threshold float64, limit int) ([]*ScoredNote, error)
}
