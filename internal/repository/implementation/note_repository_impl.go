package implementation

import (
	"context"
	"errors"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/mapper"
	"voicenotes-be/internal/model"
	"voicenotes-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var m model.Note
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string, duration float64, status entity.EmbeddingStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript":       transcript,
			"duration_seconds": duration,
			"embedding_status": string(status),
		}).Error
}

func (r *NoteRepositoryImpl) UpdateImageReference(ctx context.Context, id uuid.UUID, imageRef string) error {
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Update("image_reference", imageRef).Error
}

func (r *NoteRepositoryImpl) UpdateEmbeddingStatus(ctx context.Context, id uuid.UUID, status entity.EmbeddingStatus) error {
	updates := map[string]interface{}{
		"embedding_status": string(status),
	}
	// A non-completed status must never leave a stale vector behind.
	if status != entity.EmbeddingStatusCompleted {
		updates["embedding"] = nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *NoteRepositoryImpl) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	v := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding":        v,
			"embedding_status": string(entity.EmbeddingStatusCompleted),
		}).Error
}

// SearchSimilarWithScore ranks other notes against the target note's vector.
// Cosine distance in pgvector is 1 - cosine_similarity, so similarity is
// computed as 1 - (embedding <=> query_vector).
func (r *NoteRepositoryImpl) SearchSimilarWithScore(ctx context.Context, noteID uuid.UUID, threshold float64, limit int) ([]*contract.ScoredNote, error) {
	target, err := r.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.HasEmbedding() {
		return []*contract.ScoredNote{}, nil
	}

	type result struct {
		model.Note
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(target.Embedding)

	err = r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("id != ?", noteID).
		Where("embedding IS NOT NULL").
		Where("embedding_status = ?", string(entity.EmbeddingStatusCompleted)).
		Where("deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC, id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNote, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredNote{
			Note:       r.mapper.ToEntity(&res.Note),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
