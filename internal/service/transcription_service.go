package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/apperr"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/pkg/moderation"
	"voicenotes-be/internal/repository/contract"
	pkgAudio "voicenotes-be/pkg/audio"
	"voicenotes-be/pkg/events"
	pktNats "voicenotes-be/pkg/nats"
	"voicenotes-be/pkg/speech"
	"voicenotes-be/pkg/storage"

	"github.com/google/uuid"
)

const transcribeInstruction = "Transcribe this audio accurately. Return only the transcript."

type ITranscriptionService interface {
	// Transcribe resolves the audio, produces a transcript, persists it and
	// marks the note ready for embedding. Moderation + illustration run as a
	// best-effort sub-step that never fails the transcription.
	Transcribe(ctx context.Context, audioRef string, noteID uuid.UUID) (string, error)
}

type transcriptionService struct {
	noteRepo         contract.NoteRepository
	speechProvider   speech.Provider
	illustrations    IIllustrationService
	blobs            storage.BlobStorage
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
	moderationPrefix int
}

func NewTranscriptionService(
	noteRepo contract.NoteRepository,
	speechProvider speech.Provider,
	illustrations IIllustrationService,
	blobs storage.BlobStorage,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
	moderationPrefix int,
) ITranscriptionService {
	if moderationPrefix <= 0 {
		moderationPrefix = 1000
	}
	return &transcriptionService{
		noteRepo:         noteRepo,
		speechProvider:   speechProvider,
		illustrations:    illustrations,
		blobs:            blobs,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
		moderationPrefix: moderationPrefix,
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audioRef string, noteID uuid.UUID) (string, error) {
	audioBytes, err := s.blobs.Read(ctx, audioRef)
	if err != nil {
		return "", &apperr.TranscriptionError{
			Cause: fmt.Errorf("%w: %s", apperr.ErrAudioNotFound, audioRef),
		}
	}

	mimeType := pkgAudio.MimeTypeForReference(audioRef)

	transcript, err := s.speechProvider.Transcribe(ctx, audioBytes, mimeType, transcribeInstruction)
	if err != nil {
		return "", &apperr.TranscriptionError{Cause: err}
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", &apperr.TranscriptionError{Cause: apperr.ErrEmptyTranscript}
	}

	duration := pkgAudio.EstimateDurationSeconds(audioBytes, mimeType)

	if err := s.noteRepo.UpdateTranscript(ctx, noteID, transcript, duration, entity.EmbeddingStatusPending); err != nil {
		return "", &apperr.TranscriptionError{
			Cause: fmt.Errorf("failed to persist transcript: %w", err),
		}
	}

	// Illustration sub-step: best effort, failures logged and swallowed.
	s.generateIllustration(ctx, transcript, noteID)

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.NoteTranscribed,
			Data: map[string]interface{}{
				"note_id":          noteID,
				"transcript_chars": len(transcript),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("transcription", "failed to publish NOTE_TRANSCRIBED event", map[string]interface{}{
				"note_id": noteID,
				"error":   err.Error(),
			})
		}
	}

	return transcript, nil
}

func (s *transcriptionService) generateIllustration(ctx context.Context, transcript string, noteID uuid.UUID) {
	prefix := transcript
	if len(prefix) > s.moderationPrefix {
		// Back off to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := s.moderationPrefix
		for cut > 0 && !utf8.RuneStart(prefix[cut]) {
			cut--
		}
		prefix = prefix[:cut]
	}

	prompt, ok := moderation.Sanitize(prefix)
	if !ok {
		// Expected control-flow outcome, not an error: skip the sub-stage.
		s.logger.Info("transcription", "moderation rejected transcript as illustration prompt", map[string]interface{}{
			"note_id": noteID,
		})
		return
	}

	result := s.illustrations.Generate(ctx, prompt, noteID)
	if !result.Success {
		s.logger.Warn("transcription", "illustration generation failed", map[string]interface{}{
			"note_id": noteID,
			"status":  result.Status,
			"message": result.Message,
		})
		return
	}

	if err := s.noteRepo.UpdateImageReference(ctx, noteID, result.ImageReference); err != nil {
		s.logger.Warn("transcription", "failed to persist image reference", map[string]interface{}{
			"note_id": noteID,
			"error":   err.Error(),
		})
	}
}
