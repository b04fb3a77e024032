package pagination

// State is the navigation position. Only Current is persisted; Total comes
// from the last fetched page.
type State struct {
	Current int
	Total   int
}

// NewState returns a state positioned on page 1 of 1.
func NewState() *State {
	return &State{Current: 1, Total: 1}
}

// SetTotal records the page count and pulls Current back into range.
func (s *State) SetTotal(total int) {
	s.Total = max(total, 1)
	s.Current = min(max(s.Current, 1), s.Total)
}

// First moves to page 1.
func (s *State) First() bool {
	return s.set(1)
}

// Prev moves one page back. It is a no-op on page 1.
func (s *State) Prev() bool {
	if s.Current <= 1 {
		return false
	}
	return s.set(s.Current - 1)
}

// Next moves one page forward. It is a no-op on the last page.
func (s *State) Next() bool {
	if s.Current >= s.Total {
		return false
	}
	return s.set(s.Current + 1)
}

// Last moves to the last page.
func (s *State) Last() bool {
	return s.set(s.Total)
}

// GoTo moves to page n, clamped into [1, Total].
func (s *State) GoTo(n int) bool {
	return s.set(min(max(n, 1), max(s.Total, 1)))
}

// Reset returns to page 1 without touching Total.
func (s *State) Reset() {
	s.Current = 1
}

// Window returns the visible page window for the current position.
func (s *State) Window() Window {
	return ComputeWindow(s.Current, s.Total)
}

func (s *State) set(n int) bool {
	if n == s.Current {
		return false
	}
	s.Current = n
	return true
}
