package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/pkg/imagegen"
	"voicenotes-be/pkg/storage"

	"github.com/google/uuid"
)

// illustrationFraming is the hard-coded safety wrapper around the sanitized
// prompt. Not configurable per call: crafting the raw prompt cannot escape
// the abstract, no-text, no-faces framing.
const illustrationFraming = "A soft, abstract, minimalist illustration evoking the mood of: %s. Gentle shapes and calm colors. No text, no faces, no people."

type IIllustrationService interface {
	// Generate produces an illustration for the (already sanitized) prompt
	// and persists it. Expected failure modes come back as a failure result,
	// never as a panic or error, so the pipeline can continue.
	Generate(ctx context.Context, prompt string, noteID uuid.UUID) dto.IllustrationResult
}

type illustrationService struct {
	provider imagegen.Provider
	blobs    storage.BlobStorage
	logger   logger.ILogger
}

func NewIllustrationService(
	provider imagegen.Provider,
	blobs storage.BlobStorage,
	sysLogger logger.ILogger,
) IIllustrationService {
	return &illustrationService{
		provider: provider,
		blobs:    blobs,
		logger:   sysLogger,
	}
}

func (s *illustrationService) Generate(ctx context.Context, prompt string, noteID uuid.UUID) dto.IllustrationResult {
	framed := fmt.Sprintf(illustrationFraming, prompt)

	payload, err := s.provider.Generate(ctx, framed)
	if err != nil {
		var provErr *imagegen.ProviderError
		if errors.As(err, &provErr) {
			return dto.IllustrationResult{
				Success: false,
				Status:  provErr.Status,
				Message: provErr.Message,
			}
		}
		return dto.IllustrationResult{
			Success: false,
			Message: err.Error(),
		}
	}

	// The filename encodes note id and creation timestamp; ownership checks
	// downstream derive from it.
	filename := fmt.Sprintf("illustrations/%s_%d.png", noteID, time.Now().Unix())
	reference, err := s.blobs.Write(ctx, payload, filename)
	if err != nil {
		return dto.IllustrationResult{
			Success: false,
			Message: fmt.Sprintf("failed to persist illustration: %v", err),
		}
	}

	s.logger.Info("illustration", "illustration generated", map[string]interface{}{
		"note_id":   noteID,
		"reference": reference,
	})

	return dto.IllustrationResult{
		Success:        true,
		ImageReference: reference,
	}
}
