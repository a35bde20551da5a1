package service

import (
	"context"
	"encoding/json"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/contract"
	"voicenotes-be/pkg/events"
	pktNats "voicenotes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the single subscriber on the embed topic. It performs
// the decoupled embedding stage for each transcribed note.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	noteRepo       contract.NoteRepository
	embeddings     IEmbeddingService
	relatedNotes   IRelatedNotesService
	guard          *NoteGuard
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	noteRepo contract.NoteRepository,
	embeddings IEmbeddingService,
	relatedNotes IRelatedNotesService,
	guard *NoteGuard,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		noteRepo:       noteRepo,
		embeddings:     embeddings,
		relatedNotes:   relatedNotes,
		guard:          guard,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// The guard was acquired at enqueue time; embedding is the last stage.
	defer cs.guard.Release(payload.NoteId)

	note, err := cs.noteRepo.FindByID(ctx, payload.NoteId)
	if err != nil {
		cs.logger.Error("consumer", "failed to load note", map[string]interface{}{
			"note_id": payload.NoteId,
			"error":   err.Error(),
		})
		msg.Ack()
		return
	}
	if note == nil {
		cs.logger.Warn("consumer", "note not found, dropping message", map[string]interface{}{
			"note_id": payload.NoteId,
		})
		msg.Ack() // Note deleted? Ack.
		return
	}

	if err := cs.noteRepo.UpdateEmbeddingStatus(ctx, note.Id, entity.EmbeddingStatusProcessing); err != nil {
		cs.logger.Error("consumer", "failed to flip status to processing", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
		msg.Ack()
		return
	}

	vec, err := cs.embeddings.Generate(ctx, note.Transcript)
	if err != nil {
		// Terminal: failed is an explained state, never auto-retried. The
		// note stays queryable, just absent from similarity results.
		cs.markFailed(ctx, note, err)
		msg.Ack()
		return
	}

	if err := cs.noteRepo.SetEmbedding(ctx, note.Id, vec); err != nil {
		cs.markFailed(ctx, note, err)
		msg.Ack()
		return
	}

	// New vector changes every note's neighborhood.
	cs.relatedNotes.InvalidateCache()

	cs.publishEvent(ctx, events.NoteEmbeddingCompleted, note, nil)
	cs.logger.Info("consumer", "embedding completed", map[string]interface{}{
		"note_id":   note.Id,
		"dimension": len(vec),
	})
	msg.Ack()
}

func (cs *consumerService) markFailed(ctx context.Context, note *entity.Note, cause error) {
	if err := cs.noteRepo.UpdateEmbeddingStatus(ctx, note.Id, entity.EmbeddingStatusFailed); err != nil {
		cs.logger.Error("consumer", "failed to mark note failed", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}
	cs.publishEvent(ctx, events.NoteEmbeddingFailed, note, cause)
	cs.logger.Error("consumer", "embedding generation failed", map[string]interface{}{
		"note_id": note.Id,
		"error":   cause.Error(),
	})
}

func (cs *consumerService) publishEvent(ctx context.Context, eventType string, note *entity.Note, cause error) {
	if cs.eventPublisher == nil {
		return
	}
	data := map[string]interface{}{
		"note_id": note.Id,
	}
	if cause != nil {
		data["error"] = cause.Error()
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("consumer", "failed to publish lifecycle event", map[string]interface{}{
			"note_id": note.Id,
			"event":   eventType,
			"error":   err.Error(),
		})
	}
}
