package cli

import "context"

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Role of the stored session, re-read after commands that may change it.
	Role string

	// Terminal dimensions
	Width  int
	Height int
}

// RefreshRole re-reads the session role.
func (s *SharedState) RefreshRole(ctx context.Context) {
	if s.App.Role == nil {
		s.Role = ""
		return
	}
	s.Role = s.App.Role(ctx)
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// status bar (2 lines: separator + hints), and command bar (1 line).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
