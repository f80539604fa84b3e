package state

import "sync"

// Store is the container that owns one State for the lifetime of the program.
// It is created once at startup and shared by reference.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial.Clone()}
}

// Dispatch applies the action and returns the resulting state. A nil action is ignored.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if action != nil {
		s.state = Reduce(s.state, action)
	}
	return s.state.Clone()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
