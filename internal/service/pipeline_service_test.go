package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranscriptionService struct {
	mu      sync.Mutex
	order   []uuid.UUID
	failFor map[uuid.UUID]error
}

func (s *stubTranscriptionService) Transcribe(ctx context.Context, audioRef string, noteID uuid.UUID) (string, error) {
	s.mu.Lock()
	s.order = append(s.order, noteID)
	s.mu.Unlock()
	if err, ok := s.failFor[noteID]; ok {
		return "", err
	}
	return "transcript for " + audioRef, nil
}

func (s *stubTranscriptionService) processedOrder() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

type stubPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *stubPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func seedNote(t *testing.T, repo *memory.NoteRepository, audioRef string) uuid.UUID {
	t.Helper()
	note := &entity.Note{
		Id:              uuid.New(),
		UserId:          uuid.New(),
		AudioReference:  audioRef,
		EmbeddingStatus: entity.EmbeddingStatusPending,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), note))
	return note.Id
}

func waitForDrain(t *testing.T, svc IPipelineService) {
	t.Helper()
	assert.Eventually(t, func() bool {
		status := svc.Status()
		return status.QueueLength == 0 && !status.IsProcessing
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueueProcessesJobsInFIFOOrder(t *testing.T) {
	repo := memory.NewNoteRepository()
	guard := NewNoteGuard()
	transcriber := &stubTranscriptionService{failFor: map[uuid.UUID]error{}}
	publisher := &stubPublisher{}
	svc := NewPipelineService(guard, transcriber, publisher, repo, logger.NewNopLogger())

	a := seedNote(t, repo, "a.webm")
	b := seedNote(t, repo, "b.webm")
	c := seedNote(t, repo, "c.webm")

	svc.Enqueue(a, "a.webm")
	svc.Enqueue(b, "b.webm")
	svc.Enqueue(c, "c.webm")

	waitForDrain(t, svc)

	assert.Equal(t, []uuid.UUID{a, b, c}, transcriber.processedOrder())
	assert.Equal(t, 3, publisher.count())
}

func TestQueueIsolatesFailingJob(t *testing.T) {
	repo := memory.NewNoteRepository()
	guard := NewNoteGuard()
	a := seedNote(t, repo, "a.webm")
	b := seedNote(t, repo, "b.webm")
	c := seedNote(t, repo, "c.webm")

	transcriber := &stubTranscriptionService{
		failFor: map[uuid.UUID]error{a: errProviderDown},
	}
	publisher := &stubPublisher{}
	svc := NewPipelineService(guard, transcriber, publisher, repo, logger.NewNopLogger())

	svc.Enqueue(a, "a.webm")
	svc.Enqueue(b, "b.webm")
	svc.Enqueue(c, "c.webm")

	waitForDrain(t, svc)

	// The failure is recorded on the note and the loop kept going.
	assert.Equal(t, []uuid.UUID{a, b, c}, transcriber.processedOrder())
	assert.Equal(t, 2, publisher.count())

	noteA, err := repo.FindByID(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, entity.EmbeddingStatusFailed, noteA.EmbeddingStatus)
	assert.Nil(t, noteA.Embedding)

	// A failed job releases its note; successful ones stay held until the
	// embedding consumer finishes (absent in this test).
	assert.False(t, guard.Held(a))
	assert.True(t, guard.Held(b))
	assert.True(t, guard.Held(c))
}

func TestEnqueueSameNoteTwiceIsNoOp(t *testing.T) {
	repo := memory.NewNoteRepository()
	guard := NewNoteGuard()
	transcriber := &stubTranscriptionService{failFor: map[uuid.UUID]error{}}
	publisher := &stubPublisher{}
	svc := NewPipelineService(guard, transcriber, publisher, repo, logger.NewNopLogger())

	a := seedNote(t, repo, "a.webm")

	svc.Enqueue(a, "a.webm")
	svc.Enqueue(a, "a.webm")

	waitForDrain(t, svc)

	assert.Equal(t, []uuid.UUID{a}, transcriber.processedOrder())
}

func TestQueueRestartsAfterGoingIdle(t *testing.T) {
	repo := memory.NewNoteRepository()
	guard := NewNoteGuard()
	transcriber := &stubTranscriptionService{failFor: map[uuid.UUID]error{}}
	publisher := &stubPublisher{}
	svc := NewPipelineService(guard, transcriber, publisher, repo, logger.NewNopLogger())

	a := seedNote(t, repo, "a.webm")
	svc.Enqueue(a, "a.webm")
	waitForDrain(t, svc)

	b := seedNote(t, repo, "b.webm")
	svc.Enqueue(b, "b.webm")
	waitForDrain(t, svc)

	assert.Equal(t, []uuid.UUID{a, b}, transcriber.processedOrder())
}
