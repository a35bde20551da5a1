package imagegen

import (
	"context"
	"fmt"
)

// Provider defines the interface for image-generation backends: prompt in,
// binary image payload out.
type Provider interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ProviderError carries the provider's status and message for expected
// failure modes so the caller can report them without string parsing.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("image provider error (status %d): %s", e.Status, e.Message)
}
