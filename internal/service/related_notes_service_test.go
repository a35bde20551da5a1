package service

import (
	"context"
	"testing"
	"time"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/apperr"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNoteWithEmbedding(t *testing.T, repo *memory.NoteRepository, embedding []float32) uuid.UUID {
	t.Helper()
	note := &entity.Note{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		EmbeddingStatus: entity.EmbeddingStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), note))
	if embedding != nil {
		require.NoError(t, repo.SetEmbedding(context.Background(), note.Id, embedding))
	}
	return note.Id
}

func TestFindSimilarRejectsOutOfRangeThreshold(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	_, err := svc.FindSimilar(context.Background(), uuid.New(), 1.1, 5)
	assert.ErrorIs(t, err, apperr.ErrInvalidThreshold)

	_, err = svc.FindSimilar(context.Background(), uuid.New(), -0.1, 5)
	assert.ErrorIs(t, err, apperr.ErrInvalidThreshold)
}

func TestFindSimilarRejectsOutOfRangeLimit(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	_, err := svc.FindSimilar(context.Background(), uuid.New(), 0.5, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidLimit)

	_, err = svc.FindSimilar(context.Background(), uuid.New(), 0.5, 101)
	assert.ErrorIs(t, err, apperr.ErrInvalidLimit)
}

func TestFindSimilarUnknownNote(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	_, err := svc.FindSimilar(context.Background(), uuid.New(), 0.5, 5)
	assert.ErrorIs(t, err, apperr.ErrNoteNotFound)
}

func TestFindSimilarTargetWithoutEmbeddingIsEmpty(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	target := seedNoteWithEmbedding(t, repo, nil)
	seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})

	related, err := svc.FindSimilar(context.Background(), target, 0.5, 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestFindSimilarRanksByScoreAndHonorsThreshold(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	target := seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	identical := seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	similar := seedNoteWithEmbedding(t, repo, []float32{0.7071, 0.7071, 0, 0}) // ~0.707
	seedNoteWithEmbedding(t, repo, []float32{0, 1, 0, 0})                      // orthogonal, below threshold
	seedNoteWithEmbedding(t, repo, nil)                                        // no embedding, never eligible

	related, err := svc.FindSimilar(context.Background(), target, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, related, 2)

	assert.Equal(t, identical, related[0].RelatedNoteId)
	assert.Equal(t, similar, related[1].RelatedNoteId)
	for _, r := range related {
		assert.NotEqual(t, target, r.RelatedNoteId)
		assert.GreaterOrEqual(t, r.SimilarityScore, 0.5)
		assert.Equal(t, RelatedNoteReason, r.Reason)
	}
}

func TestFindSimilarTruncatesToLimit(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	target := seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	identical := seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	seedNoteWithEmbedding(t, repo, []float32{0.7071, 0.7071, 0, 0})

	related, err := svc.FindSimilar(context.Background(), target, 0.5, 1)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, identical, related[0].RelatedNoteId)
}

func TestFindSimilarCachesUntilInvalidated(t *testing.T) {
	repo := memory.NewNoteRepository()
	svc := NewRelatedNotesService(repo, time.Minute, logger.NewNopLogger())

	target := seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})

	first, err := svc.FindSimilar(context.Background(), target, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New embedding lands, but the cached ranking is still served.
	seedNoteWithEmbedding(t, repo, []float32{1, 0, 0, 0})
	cached, err := svc.FindSimilar(context.Background(), target, 0.5, 5)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	svc.InvalidateCache()
	fresh, err := svc.FindSimilar(context.Background(), target, 0.5, 5)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}
