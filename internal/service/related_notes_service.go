package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/apperr"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/contract"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Defaults for callers that don't care about tuning.
const (
	DefaultSimilarityThreshold = 0.7
	DefaultSimilarityLimit     = 5
)

// RelatedNoteReason is the fixed human-readable reason attached to every
// derived edge.
const RelatedNoteReason = "auto-linked by semantic similarity"

type IRelatedNotesService interface {
	// FindSimilar returns ranked related notes for the target note.
	// Read-only; zero eligible candidates yields an empty slice, not an error.
	FindSimilar(ctx context.Context, noteID uuid.UUID, threshold float64, limit int) ([]*dto.RelatedNoteResponse, error)

	// InvalidateCache drops all cached rankings. Called whenever a new
	// embedding lands.
	InvalidateCache()
}

type relatedNotesService struct {
	noteRepo    contract.NoteRepository
	validate    *validator.Validate
	resultCache *gocache.Cache
	logger      logger.ILogger
}

func NewRelatedNotesService(
	noteRepo contract.NoteRepository,
	cacheTTL time.Duration,
	sysLogger logger.ILogger,
) IRelatedNotesService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &relatedNotesService{
		noteRepo:    noteRepo,
		validate:    validator.New(),
		resultCache: gocache.New(cacheTTL, 2*cacheTTL),
		logger:      sysLogger,
	}
}

func (s *relatedNotesService) FindSimilar(ctx context.Context, noteID uuid.UUID, threshold float64, limit int) ([]*dto.RelatedNoteResponse, error) {
	req := dto.FindSimilarRequest{
		NoteId:    noteID,
		Threshold: threshold,
		Limit:     limit,
	}
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.StructField() {
				case "Threshold":
					return nil, apperr.ErrInvalidThreshold
				case "Limit":
					return nil, apperr.ErrInvalidLimit
				}
			}
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	note, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperr.ErrNoteNotFound
	}

	cacheKey := fmt.Sprintf("%s:%.4f:%d", noteID, threshold, limit)
	if x, found := s.resultCache.Get(cacheKey); found {
		return x.([]*dto.RelatedNoteResponse), nil
	}

	scored, err := s.noteRepo.SearchSimilarWithScore(ctx, noteID, threshold, limit)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.RelatedNoteResponse, len(scored))
	for i, sn := range scored {
		response[i] = &dto.RelatedNoteResponse{
			NoteId:          noteID,
			RelatedNoteId:   sn.Note.Id,
			SimilarityScore: sn.Similarity,
			Reason:          RelatedNoteReason,
		}
	}

	s.resultCache.Set(cacheKey, response, gocache.DefaultExpiration)
	return response, nil
}

func (s *relatedNotesService) InvalidateCache() {
	s.resultCache.Flush()
}
