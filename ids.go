package telemock

import "sync"

// sequence issues message and update ids. The two counters are independent
// sequences: both strictly increasing and gapless, starting at 1. They are
// never reset, even when history is cleared. 64-bit counters are assumed to
// be enough for any test session.
type sequence struct {
	mu        sync.Mutex
	messageID int64
	updateID  int64
}

func newSequence() *sequence {
	return &sequence{messageID: 1, updateID: 1}
}

func (s *sequence) nextMessageID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.messageID
	s.messageID++
	return id
}

func (s *sequence) nextUpdateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.updateID
	s.updateID++
	return id
}

// lastMessageID returns the most recently issued message id, or 0 if none
// was issued yet.
func (s *sequence) lastMessageID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID - 1
}
