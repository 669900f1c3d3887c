// Package selection tracks which contacts of the current batch are chosen for
// the next dispatch. The selection is always a subset of the batch.
package selection

import "sync"

type Set struct {
	mu       sync.RWMutex
	order    []string
	batch    map[string]struct{}
	selected map[string]struct{}
}

func New() *Set {
	return &Set{
		batch:    map[string]struct{}{},
		selected: map[string]struct{}{},
	}
}

// Replace swaps in a new batch and resets the selection to every id in it.
// Duplicate ids keep their first position.
func (s *Set) Replace(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]string, 0, len(ids))
	s.batch = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := s.batch[id]; dup {
			continue
		}
		s.batch[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.selectAllLocked()
}

func (s *Set) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectAllLocked()
}

func (s *Set) selectAllLocked() {
	s.selected = make(map[string]struct{}, len(s.order))
	for _, id := range s.order {
		s.selected[id] = struct{}{}
	}
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = map[string]struct{}{}
}

// Toggle includes or excludes one id. Ids outside the batch are ignored and
// Toggle reports false for them.
func (s *Set) Toggle(id string, included bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batch[id]; !ok {
		return false
	}
	if included {
		s.selected[id] = struct{}{}
	} else {
		delete(s.selected, id)
	}
	return true
}

func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// IDs returns the selected ids in batch order.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selected))
	for _, id := range s.order {
		if _, ok := s.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// AllSelected reports whether a non-empty batch is fully selected.
func (s *Set) AllSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order) > 0 && len(s.selected) == len(s.order)
}
