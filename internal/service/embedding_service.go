package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"voicenotes-be/internal/pkg/apperr"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/pkg/cache"
	"voicenotes-be/pkg/embedding"
)

type IEmbeddingService interface {
	// Generate returns the embedding vector for text, consulting the LRU
	// cache first and retrying transient provider failures with exponential
	// backoff.
	Generate(ctx context.Context, text string) ([]float32, error)
}

type embeddingService struct {
	provider   embedding.Provider
	cache      *cache.EmbeddingCache
	dimension  int
	maxRetries int
	baseDelay  time.Duration
	logger     logger.ILogger
}

func NewEmbeddingService(
	provider embedding.Provider,
	embCache *cache.EmbeddingCache,
	dimension int,
	maxRetries int,
	baseDelay time.Duration,
	sysLogger logger.ILogger,
) IEmbeddingService {
	return &embeddingService{
		provider:   provider,
		cache:      embCache,
		dimension:  dimension,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     sysLogger,
	}
}

func (s *embeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", apperr.ErrInvalidInput)
	}

	fingerprint := fingerprintText(text)
	if vec, ok := s.cache.Get(fingerprint); ok {
		return vec, nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if attempt > 1 {
			// attempt 2 fires after 1x base delay, attempt 3 after 2x.
			delay := s.baseDelay * time.Duration(1<<(attempt-2))
			time.Sleep(delay)
		}

		vec, err := s.provider.Generate(ctx, text)
		if err != nil {
			lastErr = err
			s.logger.Warn("embedding", "provider call failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		// A wrong-length vector is a provider contract violation, not a
		// transient failure: never retried, never cached.
		if len(vec) != s.dimension {
			return nil, &apperr.DimensionMismatchError{
				Expected: s.dimension,
				Actual:   len(vec),
			}
		}

		s.cache.Set(fingerprint, vec)
		return vec, nil
	}

	return nil, &apperr.EmbeddingGenerationError{
		Attempts: s.maxRetries,
		Cause:    lastErr,
	}
}

// fingerprintText hashes the exact text submitted for embedding. Collision
// resistance matters more than speed here, so sha256 over a fast hash.
func fingerprintText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
