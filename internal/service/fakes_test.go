package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// In-memory blob storage double. Audio fixtures store the transcript text as
// the payload so the fake speech provider can echo it back.
type fakeBlobStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStorage) Read(ctx context.Context, reference string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[reference]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", reference)
	}
	return data, nil
}

func (s *fakeBlobStorage) Write(ctx context.Context, data []byte, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[filename] = data
	return filename, nil
}

func (s *fakeBlobStorage) Delete(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, reference)
	return nil
}

func (s *fakeBlobStorage) put(reference string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[reference] = data
}

// fakeSpeechProvider returns the audio payload as the transcript.
type fakeSpeechProvider struct {
	err error
}

func (p *fakeSpeechProvider) Transcribe(ctx context.Context, audio []byte, mimeType string, instruction string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return string(audio), nil
}

// fakeEmbeddingProvider delegates to a function, counting calls.
type fakeEmbeddingProvider struct {
	mu       sync.Mutex
	calls    int
	generate func(attempt int, text string) ([]float32, error)
}

func (p *fakeEmbeddingProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls++
	attempt := p.calls
	p.mu.Unlock()
	return p.generate(attempt, text)
}

func (p *fakeEmbeddingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeImageProvider returns a fixed payload or a provider error.
type fakeImageProvider struct {
	payload []byte
	err     error

	mu         sync.Mutex
	lastPrompt string
}

func (p *fakeImageProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	p.mu.Lock()
	p.lastPrompt = prompt
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.payload, nil
}

var errProviderDown = errors.New("provider unavailable")
