// Package memory holds in-process repository implementations used by tests
// and DB-less runs.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// NoteRepository is a go-cache backed implementation of
// contract.NoteRepository. Similarity is computed in Go instead of pgvector.
type NoteRepository struct {
	store *cache.Cache
	mu    sync.Mutex // serializes read-modify-write cycles on a note
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		store: cache.New(cache.NoExpiration, 0),
	}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	if note.EmbeddingStatus == "" {
		note.EmbeddingStatus = entity.EmbeddingStatusPending
	}
	cp := *note
	r.store.Set(note.Id.String(), &cp, cache.NoExpiration)
	return nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	if x, found := r.store.Get(id.String()); found {
		cp := *(x.(*entity.Note))
		return &cp, nil
	}
	return nil, nil
}

func (r *NoteRepository) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string, duration float64, status entity.EmbeddingStatus) error {
	return r.mutate(id, func(n *entity.Note) {
		n.Transcript = transcript
		n.DurationSeconds = duration
		n.EmbeddingStatus = status
	})
}

func (r *NoteRepository) UpdateImageReference(ctx context.Context, id uuid.UUID, imageRef string) error {
	return r.mutate(id, func(n *entity.Note) {
		n.ImageReference = imageRef
	})
}

func (r *NoteRepository) UpdateEmbeddingStatus(ctx context.Context, id uuid.UUID, status entity.EmbeddingStatus) error {
	return r.mutate(id, func(n *entity.Note) {
		n.EmbeddingStatus = status
		if status != entity.EmbeddingStatusCompleted {
			n.Embedding = nil
		}
	})
}

func (r *NoteRepository) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	return r.mutate(id, func(n *entity.Note) {
		n.Embedding = embedding
		n.EmbeddingStatus = entity.EmbeddingStatusCompleted
	})
}

func (r *NoteRepository) SearchSimilarWithScore(ctx context.Context, noteID uuid.UUID, threshold float64, limit int) ([]*contract.ScoredNote, error) {
	target, err := r.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.HasEmbedding() {
		return []*contract.ScoredNote{}, nil
	}

	scored := make([]*contract.ScoredNote, 0)
	for _, item := range r.store.Items() {
		note := item.Object.(*entity.Note)
		if note.Id == noteID || !note.HasEmbedding() || note.IsDeleted {
			continue
		}
		sim := cosineSimilarity(target.Embedding, note.Embedding)
		if sim >= threshold {
			cp := *note
			scored = append(scored, &contract.ScoredNote{Note: &cp, Similarity: sim})
		}
	}

	// Descending similarity, ties broken deterministically by note id.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Note.Id.String() < scored[j].Note.Id.String()
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (r *NoteRepository) mutate(id uuid.UUID, fn func(n *entity.Note)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, found := r.store.Get(id.String())
	if !found {
		return nil
	}
	cp := *(x.(*entity.Note))
	fn(&cp)
	r.store.Set(id.String(), &cp, cache.NoExpiration)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
