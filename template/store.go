package template

import (
	"sync"

	"github.com/verimatch/verimatch/model"
)

// Key identifies a template by user and modality.
type Key struct {
	UserID   string
	Modality model.Modality
}

// Store is the in-core template adapter: an in-memory map of immutable
// templates. Put replaces a template wholesale; values are never mutated
// in place, so a concurrent Get during a Put observes either the old or
// the new template, never a partial one. Serializing writes per user is
// the caller's responsibility.
type Store struct {
	mu        sync.RWMutex
	templates map[Key]Template
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{templates: make(map[Key]Template)}
}

// Get returns the current template for (userID, modality), if any.
func (s *Store) Get(userID string, modality model.Modality) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[Key{UserID: userID, Modality: modality}]
	return t, ok
}

// Put replaces the template for the given user and the template's
// modality. Re-enrollment goes through here: the old template is dropped
// atomically with the swap.
func (s *Store) Put(userID string, t Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[Key{UserID: userID, Modality: t.Modality()}] = t
}

// Delete removes the template for (userID, modality).
func (s *Store) Delete(userID string, modality model.Modality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, Key{UserID: userID, Modality: modality})
}

// Len returns the number of stored templates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}
