package chat

import "sync"

// Stream is a single-consumption sequence of answer fragments. Fragments
// arrive on Tokens in emission order; once the channel is closed, Err
// reports whether the stream completed normally.
type Stream struct {
	tokens chan string

	mu  sync.Mutex
	err error
}

func newStream() *Stream {
	return &Stream{tokens: make(chan string)}
}

// Tokens returns the fragment channel. It is closed on completion or error.
func (s *Stream) Tokens() <-chan string {
	return s.tokens
}

// Err returns the terminal error, if any. Only meaningful after Tokens has
// been drained.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
