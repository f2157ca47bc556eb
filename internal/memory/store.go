package memory

import "sync"

// Conversation holds the bounded sliding window of turns for one session.
// When the window is full the oldest turn is evicted first.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn
	max   int
}

func newConversation(max int) *Conversation {
	return &Conversation{max: max}
}

// Append adds a turn, evicting the oldest turns beyond the window bound.
func (c *Conversation) Append(t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, t)
	if len(c.turns) > c.max {
		c.turns = c.turns[len(c.turns)-c.max:]
	}
}

// Turns returns a copy of the current window, oldest first.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns currently held.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// Clear empties the window in place.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// Store maps session identifiers to their conversations. All methods are
// safe for concurrent use; at most one Conversation ever exists per id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
	window   int
}

// NewStore creates a store whose conversations keep the last `window` turns.
func NewStore(window int) *Store {
	return &Store{
		sessions: make(map[string]*Conversation),
		window:   window,
	}
}

// GetOrCreate returns the conversation for id, creating and registering an
// empty one if none exists. Concurrent first calls for the same id all
// observe the same instance.
func (s *Store) GetOrCreate(id string) *Conversation {
	s.mu.RLock()
	conv, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.sessions[id]; ok {
		return conv
	}
	conv = newConversation(s.window)
	s.sessions[id] = conv
	return conv
}

// Get returns the conversation for id, or nil if none is registered.
func (s *Store) Get(id string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Clear empties the conversation for id. The session stays registered.
// Unknown ids are a no-op.
func (s *Store) Clear(id string) {
	s.mu.RLock()
	conv := s.sessions[id]
	s.mu.RUnlock()
	if conv != nil {
		conv.Clear()
	}
}

// Remove empties and deregisters the conversation for id. A subsequent
// GetOrCreate starts fresh. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	conv := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if conv != nil {
		conv.Clear()
	}
}

// ClearAll empties and deregisters every session, returning how many were
// registered.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.sessions)
	for _, conv := range s.sessions {
		conv.Clear()
	}
	s.sessions = make(map[string]*Conversation)
	return count
}

// Count returns the number of registered sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
