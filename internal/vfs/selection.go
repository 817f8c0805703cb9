package vfs

import (
	"sort"
	"sync"
)

// Selection tracks multi-select state independent of what the filter
// pipeline currently shows. Batch operations resolve the ids against the
// store at execution time, so stale entries are harmless.
type Selection struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	mode bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle handles a click on an item. Additive clicks (modifier key) always
// toggle membership; plain clicks toggle only while selection mode is
// active and are otherwise ignored.
func (s *Selection) Toggle(itemID string, additive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !additive && !s.mode {
		return
	}
	if _, ok := s.ids[itemID]; ok {
		delete(s.ids, itemID)
	} else {
		s.ids[itemID] = struct{}{}
	}
}

// SelectAll replaces the selection with the given visible ids.
func (s *Selection) SelectAll(visible []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make(map[string]struct{}, len(visible))
	for _, itemID := range visible {
		s.ids[itemID] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// EnterMode turns selection mode on. Nothing is auto-selected.
func (s *Selection) EnterMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = true
}

// LeaveMode turns selection mode off and clears the selection.
func (s *Selection) LeaveMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = false
	s.ids = make(map[string]struct{})
}

// InMode reports whether selection mode is active.
func (s *Selection) InMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Has reports membership.
func (s *Selection) Has(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[itemID]
	return ok
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected ids, sorted for determinism.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.ids))
	for itemID := range s.ids {
		out = append(out, itemID)
	}
	sort.Strings(out)
	return out
}
