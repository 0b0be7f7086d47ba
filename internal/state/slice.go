// Package state holds request/response containers for remote data. Each
// container tracks one logical request: its phase, the last payload and the
// last failure message.
package state

import (
	"sync"

	"github.com/alexanderramin/hrdesk/internal/api"
)

// Phase is the lifecycle position of a Slice.
type Phase int

const (
	Idle Phase = iota
	Loading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Ticket identifies one issued request. Only the most recently issued ticket
// may settle the slice.
type Ticket struct {
	gen uint64
}

// Generation returns the ticket's sequence number.
func (t Ticket) Generation() uint64 { return t.gen }

// Snapshot is a point-in-time copy of a Slice.
type Snapshot[T any] struct {
	Phase      Phase
	Data       T
	HasData    bool
	Err        error
	Message    string
	Generation uint64
}

// Loading reports whether a request is in flight.
func (s Snapshot[T]) Loading() bool { return s.Phase == Loading }

// Slice is a concurrency-safe request container. The zero value is not
// usable; construct with New.
type Slice[T any] struct {
	mu       sync.Mutex
	name     string
	fallback string
	phase    Phase
	data     T
	hasData  bool
	err      error
	message  string
	issued   uint64
}

// New creates an idle slice. fallback is the failure message used when the
// server supplies none.
func New[T any](name, fallback string) *Slice[T] {
	return &Slice[T]{name: name, fallback: fallback}
}

// Name returns the slice's name.
func (s *Slice[T]) Name() string { return s.name }

// Begin marks a new request as in flight and returns its ticket. Any ticket
// issued earlier becomes stale.
func (s *Slice[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.phase = Loading
	return Ticket{gen: s.issued}
}

// Resolve stores data when t is the latest ticket. It reports whether the
// result was applied.
func (s *Slice[T]) Resolve(t Ticket, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.gen != s.issued || s.phase != Loading {
		return false
	}
	s.phase = Succeeded
	s.data = data
	s.hasData = true
	s.err = nil
	s.message = ""
	return true
}

// Reject records err when t is the latest ticket. The previous payload is
// kept. It reports whether the failure was applied.
func (s *Slice[T]) Reject(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.gen != s.issued || s.phase != Loading {
		return false
	}
	s.phase = Failed
	s.err = err
	s.message = api.Message(err, s.fallback)
	return true
}

// Settle resolves or rejects depending on err.
func (s *Slice[T]) Settle(t Ticket, data T, err error) bool {
	if err != nil {
		return s.Reject(t, err)
	}
	return s.Resolve(t, data)
}

// Reset returns the slice to Idle and clears payload and failure. Tickets
// issued before the reset are invalidated.
func (s *Slice[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.issued++
	s.phase = Idle
	s.data = zero
	s.hasData = false
	s.err = nil
	s.message = ""
}

// Snapshot returns a copy of the current state.
func (s *Slice[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Phase:      s.phase,
		Data:       s.data,
		HasData:    s.hasData,
		Err:        s.err,
		Message:    s.message,
		Generation: s.issued,
	}
}

// Phase returns the current phase.
func (s *Slice[T]) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}
