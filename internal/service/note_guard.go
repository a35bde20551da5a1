package service

import (
	"sync"

	"github.com/google/uuid"
)

// NoteGuard tracks which notes currently have pipeline work in flight, from
// enqueue until the embedding stage finishes. It upholds the invariant that
// at most one embedding write is in flight per note: Enqueue refuses a note
// that is already held, and the embedding consumer releases it when done.
type NoteGuard struct {
	mu     sync.Mutex
	active map[uuid.UUID]bool
}

func NewNoteGuard() *NoteGuard {
	return &NoteGuard{active: make(map[uuid.UUID]bool)}
}

// TryAcquire marks the note as in flight. Returns false when already held.
func (g *NoteGuard) TryAcquire(noteID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[noteID] {
		return false
	}
	g.active[noteID] = true
	return true
}

func (g *NoteGuard) Release(noteID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, noteID)
}

func (g *NoteGuard) Held(noteID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[noteID]
}
