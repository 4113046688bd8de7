package reporter

import "sync"

// ErrorSink is an unbounded FIFO of background delivery failures.
// Flush completions push, callers pop.
type ErrorSink struct {
	mu   sync.Mutex
	errs []error
}

// Push appends err.
func (s *ErrorSink) Push(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Pop removes and returns the oldest error, or nil when empty.
func (s *ErrorSink) Pop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs[0] = nil
	s.errs = s.errs[1:]
	return err
}

// Len returns the number of queued errors.
func (s *ErrorSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}
