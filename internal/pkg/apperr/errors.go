// Package apperr defines the error taxonomy shared across the note pipeline.
//
// Sentinel errors classify a failure; wrapper types carry stage context.
// Callers branch with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinels. Matched with errors.Is.
var (
	// ErrInvalidInput marks bad caller-supplied parameters. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidThreshold / ErrInvalidLimit are the similarity query bounds violations.
	ErrInvalidThreshold = fmt.Errorf("%w: threshold must be between 0 and 1", ErrInvalidInput)
	ErrInvalidLimit     = fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidInput)

	// ErrAudioNotFound means the audio reference could not be resolved.
	ErrAudioNotFound = errors.New("audio resource not found")

	// ErrNoteNotFound means the target note does not exist.
	ErrNoteNotFound = errors.New("note not found")

	// ErrEmptyTranscript marks a speech provider that returned no text.
	// An empty transcript is a failure, not a success with empty string.
	ErrEmptyTranscript = errors.New("empty transcript from speech provider")
)

// DimensionMismatchError is a contract violation: the embedding provider returned
// a vector of the wrong length. The call "succeeded", so it is never retried and
// never cached.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// EmbeddingGenerationError wraps the final provider failure after retries
// are exhausted.
type EmbeddingGenerationError struct {
	Attempts int
	Cause    error
}

func (e *EmbeddingGenerationError) Error() string {
	return fmt.Sprintf("embedding generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *EmbeddingGenerationError) Unwrap() error {
	return e.Cause
}

// TranscriptionError wraps any failure before the transcript was persisted.
type TranscriptionError struct {
	Cause error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Cause)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}
