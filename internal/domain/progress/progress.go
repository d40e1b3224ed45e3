// Package progress records lesson playback progress. The consistency
// contract is deliberately weaker than checkout's: the local state is
// updated optimistically and never rolled back; the durable write is
// best-effort and its failure is only surfaced.
package progress

import (
	"context"
	"sync"
	"time"
)

// Entry is the recorded progress for one lesson.
type Entry struct {
	LessonID       string
	WatchedSeconds int
	Completed      bool
	UpdatedAt      time.Time
}

// Persister durably stores progress entries.
type Persister interface {
	Save(ctx context.Context, owner string, e Entry) error
}

// Store holds the optimistic local progress state per owner.
type Store struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry
}

// NewStore returns an empty progress store.
func NewStore() *Store {
	return &Store{entries: make(map[string]map[string]Entry)}
}

// Put records the entry for the owner, replacing any previous one.
func (s *Store) Put(owner string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[owner] == nil {
		s.entries[owner] = make(map[string]Entry)
	}
	s.entries[owner][e.LessonID] = e
}

// Get returns the owner's entry for a lesson.
func (s *Store) Get(owner, lessonID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[owner][lessonID]
	return e, ok
}
