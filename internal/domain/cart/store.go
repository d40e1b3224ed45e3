package cart

import (
	"sync"
	"time"
)

// Store keeps one cart per owner. It is safe for concurrent use. Only the
// checkout orchestrator's completed transition may clear a cart; handlers add
// and remove single items.
type Store struct {
	mu    sync.RWMutex
	carts map[string][]LineItem
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string][]LineItem)}
}

// Add appends an item to the owner's cart.
func (s *Store) Add(owner string, item LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[owner] = append(s.carts[owner], item)
}

// Remove deletes the first line item with the given product ID from the
// owner's cart. It reports whether an item was removed.
func (s *Store) Remove(owner, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[owner]
	for i, item := range items {
		if item.ProductID == productID {
			s.carts[owner] = append(items[:i:i], items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the owner's current cart.
func (s *Store) Items(owner string) []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]LineItem, len(s.carts[owner]))
	copy(items, s.carts[owner])
	return items
}

// Len returns the number of line items in the owner's cart.
func (s *Store) Len(owner string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts[owner])
}

// Snapshot captures the owner's cart as of now. The snapshot owns its item
// slice, so concurrent cart edits cannot reach an in-flight checkout.
func (s *Store) Snapshot(owner string) Snapshot {
	return Snapshot{
		Items:   s.Items(owner),
		TakenAt: time.Now().UTC(),
	}
}

// Clear removes the owner's cart entirely.
func (s *Store) Clear(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
}
