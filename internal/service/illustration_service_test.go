package service

import (
	"context"
	"strings"
	"testing"

	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/pkg/imagegen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIllustrationSuccessPersistsImage(t *testing.T) {
	blobs := newFakeBlobStorage()
	provider := &fakeImageProvider{payload: []byte("png-bytes")}
	svc := NewIllustrationService(provider, blobs, logger.NewNopLogger())
	noteID := uuid.New()

	result := svc.Generate(context.Background(), "a quiet mountain lake", noteID)

	require.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.ImageReference, "illustrations/"+noteID.String()))

	stored, err := blobs.Read(context.Background(), result.ImageReference)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), stored)
}

func TestIllustrationWrapsPromptInSafetyFraming(t *testing.T) {
	blobs := newFakeBlobStorage()
	provider := &fakeImageProvider{payload: []byte("png")}
	svc := NewIllustrationService(provider, blobs, logger.NewNopLogger())

	svc.Generate(context.Background(), "a quiet mountain lake", uuid.New())

	assert.Contains(t, provider.lastPrompt, "a quiet mountain lake")
	assert.Contains(t, provider.lastPrompt, "No text, no faces, no people")
}

func TestIllustrationProviderFailureReturnsResultNotError(t *testing.T) {
	blobs := newFakeBlobStorage()
	provider := &fakeImageProvider{
		err: &imagegen.ProviderError{Status: 429, Message: "rate limited"},
	}
	svc := NewIllustrationService(provider, blobs, logger.NewNopLogger())

	result := svc.Generate(context.Background(), "anything", uuid.New())

	assert.False(t, result.Success)
	assert.Equal(t, 429, result.Status)
	assert.Equal(t, "rate limited", result.Message)
	assert.Empty(t, result.ImageReference)
}

func TestIllustrationUnexpectedErrorReturnsFailureResult(t *testing.T) {
	blobs := newFakeBlobStorage()
	provider := &fakeImageProvider{err: errProviderDown}
	svc := NewIllustrationService(provider, blobs, logger.NewNopLogger())

	result := svc.Generate(context.Background(), "anything", uuid.New())

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "provider unavailable")
}
