package lightbox

import "sync"

// ScrollState is a ScrollLock that tracks nested holders. Scrolling is
// suspended while any holder remains.
type ScrollState struct {
	mu    sync.Mutex
	depth int
}

// Acquire suspends scrolling until the returned function is called. The
// release function may be called more than once.
func (s *ScrollState) Acquire() func() {
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.depth--
			s.mu.Unlock()
		})
	}
}

// Locked reports whether scrolling is suspended.
func (s *ScrollState) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}
