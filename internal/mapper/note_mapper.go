package mapper

import (
	"time"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(e *model.Note) *entity.Note {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if e.Embedding != nil {
		embedding = e.Embedding.Slice()
	}

	return &entity.Note{
		Id:              e.Id,
		UserId:          e.UserId,
		AudioReference:  e.AudioReference,
		Transcript:      e.Transcript,
		Embedding:       embedding,
		EmbeddingStatus: entity.EmbeddingStatus(e.EmbeddingStatus),
		ImageReference:  e.ImageReference,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       e.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(e *entity.Note) *model.Note {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(e.Embedding) > 0 {
		v := pgvector.NewVector(e.Embedding)
		embedding = &v
	}

	return &model.Note{
		Id:              e.Id,
		UserId:          e.UserId,
		AudioReference:  e.AudioReference,
		Transcript:      e.Transcript,
		Embedding:       embedding,
		EmbeddingStatus: string(e.EmbeddingStatus),
		ImageReference:  e.ImageReference,
		DurationSeconds: e.DurationSeconds,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}
