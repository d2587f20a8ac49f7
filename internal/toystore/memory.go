package toystore

import (
	"context"
	"errors"
	"sync"
)

var errClosed = errors.New("toystore: store closed")

// MemoryStore keeps the record in process memory. It survives detach and
// re-attach within one session, which is what tests and dry runs need.
// Thread-safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	rec    Record
	saves  int
	closed bool
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, errClosed
	}
	return s.rec, nil
}

func (s *MemoryStore) Save(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.rec = r
	s.saves++
	return nil
}

// Close marks the store closed. Reopen makes it usable again with the
// same contents, modelling re-attaching the same backup.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Reopen undoes Close.
func (s *MemoryStore) Reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Name() string {
	return "memory"
}
