package embedding

import "context"

// Provider defines the interface for generating text embeddings.
// Backends are swappable; the returned vector length is validated by the
// caller against the configured dimension.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
