// Package sequence allocates integer record IDs that are never reused.
package sequence

import "sync"

// Sequence tracks the highest ID ever observed or issued. The watermark only
// moves forward.
type Sequence struct {
	mu   sync.Mutex
	last int
}

func New() *Sequence {
	return &Sequence{}
}

// Observe raises the watermark to id when id is higher.
func (s *Sequence) Observe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Next issues the next ID, strictly greater than every ID seen so far.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

func (s *Sequence) Last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
