package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Note struct {
	Id              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID        `gorm:"type:uuid;not null;index"`
	AudioReference  string           `gorm:"type:varchar(512);not null"`
	Transcript      string           `gorm:"type:text"`
	Embedding       *pgvector.Vector `gorm:"type:vector(768)"` // dimension must match EMBEDDING_DIMENSION
	EmbeddingStatus string           `gorm:"type:varchar(16);not null;default:'pending';index"`
	ImageReference  string           `gorm:"type:varchar(512)"`
	DurationSeconds float64          `gorm:"default:0"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt   `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
