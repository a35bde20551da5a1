package service

import (
	"context"
	"testing"
	"time"

	"voicenotes-be/internal/pkg/apperr"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 4

func newTestEmbeddingService(t *testing.T, provider *fakeEmbeddingProvider, baseDelay time.Duration) (IEmbeddingService, *cache.EmbeddingCache) {
	t.Helper()
	embCache, err := cache.NewEmbeddingCache(10)
	require.NoError(t, err)
	svc := NewEmbeddingService(provider, embCache, testDimension, 3, baseDelay, logger.NewNopLogger())
	return svc, embCache
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	provider := &fakeEmbeddingProvider{
		generate: func(attempt int, text string) ([]float32, error) {
			t.Fatal("provider must not be called for empty input")
			return nil, nil
		},
	}
	svc, _ := newTestEmbeddingService(t, provider, time.Millisecond)

	_, err := svc.Generate(context.Background(), "   \t ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGenerateRetriesWithBackoffThenSucceeds(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3, 0.4}
	provider := &fakeEmbeddingProvider{
		generate: func(attempt int, text string) ([]float32, error) {
			if attempt <= 2 {
				return nil, errProviderDown
			}
			return want, nil
		},
	}
	baseDelay := 20 * time.Millisecond
	svc, _ := newTestEmbeddingService(t, provider, baseDelay)

	start := time.Now()
	got, err := svc.Generate(context.Background(), "morning standup recap")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 3, provider.callCount())
	// attempt 2 after 1x base, attempt 3 after 2x base
	assert.GreaterOrEqual(t, elapsed, 3*baseDelay)
}

func TestGenerateSurfacesFinalFailure(t *testing.T) {
	provider := &fakeEmbeddingProvider{
		generate: func(attempt int, text string) ([]float32, error) {
			return nil, errProviderDown
		},
	}
	svc, embCache := newTestEmbeddingService(t, provider, time.Millisecond)

	_, err := svc.Generate(context.Background(), "some text")

	var genErr *apperr.EmbeddingGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempts)
	assert.ErrorIs(t, err, errProviderDown)
	assert.Equal(t, 3, provider.callCount())
	assert.Equal(t, 0, embCache.Size())
}

func TestGenerateRejectsWrongDimensionWithoutRetryOrCache(t *testing.T) {
	provider := &fakeEmbeddingProvider{
		generate: func(attempt int, text string) ([]float32, error) {
			return []float32{1, 2}, nil // wrong length
		},
	}
	svc, embCache := newTestEmbeddingService(t, provider, time.Millisecond)

	_, err := svc.Generate(context.Background(), "some text")

	var dimErr *apperr.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, testDimension, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Actual)
	// Contract violations are terminal: one attempt, nothing cached.
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, 0, embCache.Size())
}

func TestGenerateUsesCacheOnRepeat(t *testing.T) {
	want := []float32{1, 0, 0, 0}
	provider := &fakeEmbeddingProvider{
		generate: func(attempt int, text string) ([]float32, error) {
			return want, nil
		},
	}
	svc, embCache := newTestEmbeddingService(t, provider, time.Millisecond)

	first, err := svc.Generate(context.Background(), "same exact text")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "same exact text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, 1, embCache.Size())
}
