package service

import (
	"context"
	"encoding/json"
	"sync"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/contract"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one unit of pipeline work. Ephemeral: lives only in the in-process
// queue and is lost on restart.
type Job struct {
	NoteId         uuid.UUID
	AudioReference string
	Status         JobStatus
	Error          string
}

type IPipelineService interface {
	// Enqueue appends a job for the note and starts the worker loop if it is
	// idle. Enqueueing a note that is already queued or in flight is a no-op.
	Enqueue(noteID uuid.UUID, audioRef string)

	// Status exposes queue length and whether the loop is active.
	Status() dto.QueueStatusResponse
}

type pipelineService struct {
	mu           sync.Mutex
	queue        []*Job
	isProcessing bool

	guard            *NoteGuard
	transcriptions   ITranscriptionService
	publisherService IPublisherService
	noteRepo         contract.NoteRepository
	logger           logger.ILogger
}

func NewPipelineService(
	guard *NoteGuard,
	transcriptions ITranscriptionService,
	publisherService IPublisherService,
	noteRepo contract.NoteRepository,
	sysLogger logger.ILogger,
) IPipelineService {
	return &pipelineService{
		guard:            guard,
		transcriptions:   transcriptions,
		publisherService: publisherService,
		noteRepo:         noteRepo,
		logger:           sysLogger,
	}
}

func (s *pipelineService) Enqueue(noteID uuid.UUID, audioRef string) {
	if !s.guard.TryAcquire(noteID) {
		s.logger.Warn("pipeline", "note already queued or in flight, skipping", map[string]interface{}{
			"note_id": noteID,
		})
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, &Job{
		NoteId:         noteID,
		AudioReference: audioRef,
		Status:         JobStatusPending,
	})
	start := !s.isProcessing
	if start {
		s.isProcessing = true
	}
	s.mu.Unlock()

	// Double invocation of the loop is a no-op: only the Enqueue that flips
	// the flag starts a goroutine.
	if start {
		go s.run()
	}
}

func (s *pipelineService) Status() dto.QueueStatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.QueueStatusResponse{
		QueueLength:  len(s.queue),
		IsProcessing: s.isProcessing,
	}
}

// run drains the queue in strict FIFO order, then goes idle. One job's
// failure never aborts the loop.
func (s *pipelineService) run() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.isProcessing = false
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.process(job)
	}
}

func (s *pipelineService) process(job *Job) {
	ctx := context.Background()
	job.Status = JobStatusProcessing

	s.logger.Info("pipeline", "processing job", map[string]interface{}{
		"note_id": job.NoteId,
		"audio":   job.AudioReference,
	})

	_, err := s.transcriptions.Transcribe(ctx, job.AudioReference, job.NoteId)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	// Hand the embedding stage to the background consumer so the loop can
	// pick up the next job immediately. The note guard stays held until the
	// consumer finishes.
	payload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: job.NoteId})
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.failJob(ctx, job, err)
		return
	}

	job.Status = JobStatusCompleted
	s.logger.Info("pipeline", "job completed, embedding handed off", map[string]interface{}{
		"note_id": job.NoteId,
	})
}

func (s *pipelineService) failJob(ctx context.Context, job *Job, cause error) {
	job.Status = JobStatusFailed
	job.Error = cause.Error()

	if err := s.noteRepo.UpdateEmbeddingStatus(ctx, job.NoteId, entity.EmbeddingStatusFailed); err != nil {
		s.logger.Error("pipeline", "failed to mark note failed", map[string]interface{}{
			"note_id": job.NoteId,
			"error":   err.Error(),
		})
	}
	s.guard.Release(job.NoteId)

	s.logger.Error("pipeline", "job failed", map[string]interface{}{
		"note_id": job.NoteId,
		"error":   cause.Error(),
	})
}
