// Package session owns the per-session client state: the product
// selection and the conversation history.
package session

import (
	"log/slog"
	"sync"

	"routinely/internal/catalog"
)

// Persister stores the ordered id list of the current selection.
type Persister interface {
	SaveSelection(ids []string) error
}

// SelectionStore maintains the ordered set of selected products, keyed by
// product id. Insertion order is preserved and there is at most one entry
// per id. Every mutation persists the id list synchronously best-effort:
// a persistence failure is logged, never raised, and the in-memory state
// stays authoritative.
type SelectionStore struct {
	mu        sync.RWMutex
	products  []catalog.Product
	persister Persister
	logger    *slog.Logger
}

// NewSelectionStore creates an empty selection store. persister may be nil
// for purely in-memory use.
func NewSelectionStore(persister Persister, logger *slog.Logger) *SelectionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectionStore{
		persister: persister,
		logger:    logger,
	}
}

// Toggle removes the product if its id is already selected, otherwise
// appends it to the end. Returns true if the product is selected after
// the call.
func (s *SelectionStore) Toggle(p catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.products {
		if existing.ID == p.ID {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.persistLocked()
			return false
		}
	}

	s.products = append(s.products, p)
	s.persistLocked()
	return true
}

// Remove drops the entry with the given id. Removing an absent id is a
// no-op, not an error.
func (s *SelectionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.products {
		if existing.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Clear empties the selection.
func (s *SelectionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	s.persistLocked()
}

// Restore replaces the selection by resolving each persisted id in order.
// Ids that no longer resolve are silently dropped. Restore does not
// persist: the source of truth is already durable.
func (s *SelectionStore) Restore(ids []string, resolve func(id string) (catalog.Product, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := resolve(id)
		if !ok {
			s.logger.Debug("dropping unresolvable saved product id", "id", id)
			continue
		}
		restored = append(restored, p)
	}
	s.products = restored
}

// Products returns a copy of the selection in insertion order.
func (s *SelectionStore) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// IDs returns the selected product ids in insertion order.
func (s *SelectionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.idsLocked()
}

// Len returns the number of selected products.
func (s *SelectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *SelectionStore) idsLocked() []string {
	ids := make([]string, len(s.products))
	for i, p := range s.products {
		ids[i] = p.ID
	}
	return ids
}

func (s *SelectionStore) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveSelection(s.idsLocked()); err != nil {
		s.logger.Error("failed to save selection", "error", err)
	}
}
