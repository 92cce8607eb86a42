// Package store implements the node's in-memory, write-once,
// content-addressed blob store.
package store

import (
	"sync"

	"github.com/tagnet/tagnet/tag"
)

// Store is a write-once map from Tag to blob. A duplicate upload of an
// already-present tag silently keeps the original bytes.
type Store struct {
	mu   sync.RWMutex
	data map[tag.Tag][]byte
}

// New constructs an empty Store.
func New() *Store {
	return &Store{data: make(map[tag.Tag][]byte)}
}

// Put computes t = tag.Digest(data) and stores (t, data) unless t is
// already present, in which case the existing bytes are preserved and the
// incoming data is dropped. Returns t and whether this call was the one
// that actually stored the bytes.
func (s *Store) Put(data []byte) (tag.Tag, bool) {
	t := tag.Digest(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[t]; exists {
		return t, false
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	s.data[t] = cpy
	return t, true
}

// Get returns the bytes stored under t, if any.
func (s *Store) Get(t tag.Tag) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[t]
	return b, ok
}

// Has reports whether t is present.
func (s *Store) Has(t tag.Tag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[t]
	return ok
}

// Len returns the number of distinct tags stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
