package browser

import (
	"errors"
	"fmt"
	"sync"

	"github.com/amishk599/shiftline/internal/model"
)

// State is where a Session sits in its lifecycle.
type State int

const (
	Idle State = iota
	FilterApplied
	Collecting
	Collected
	DetailFetch
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FilterApplied:
		return "filter-applied"
	case Collecting:
		return "collecting"
	case Collected:
		return "collected"
	case DetailFetch:
		return "detail-fetch"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrSessionBusy is returned when a driver operation is started while
	// another one is in flight on the same session.
	ErrSessionBusy = errors.New("browser session busy")
	// ErrBadTransition is returned for an operation the current state does
	// not allow.
	ErrBadTransition = errors.New("illegal session transition")
)

var transitions = map[State][]State{
	Idle:          {FilterApplied, Done},
	FilterApplied: {Collecting, DetailFetch, Done},
	Collecting:    {Collected, Done},
	Collected:     {DetailFetch, Done},
	DetailFetch:   {DetailFetch, FilterApplied, Done},
}

// Session is one long-lived page on one portal. Every driver operation takes
// the session explicitly and holds its lock for the whole step, so no two
// navigations can overlap.
type Session struct {
	mu sync.Mutex

	page      Page
	state     State
	filtered  bool // category filter is in effect
	onDetail  bool // page shows a detail view, not the list
	collected bool

	seen     map[string]bool
	listings []model.RawListing

	Scrolls  int // scroll rounds performed while collecting
	Replays  int // successful replays
	scrollAt int // index of the scroll technique that last worked
}

// NewSession wraps a freshly opened page.
func NewSession(page Page) *Session {
	return &Session{
		page: page,
		seen: make(map[string]bool),
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Listings returns the listings collected so far.
func (s *Session) Listings() []model.RawListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RawListing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Filtered reports whether the category filter is in effect.
func (s *Session) Filtered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered
}

func (s *Session) acquire() error {
	if !s.mu.TryLock() {
		return ErrSessionBusy
	}
	return nil
}

func (s *Session) release() {
	s.mu.Unlock()
}

func (s *Session) transition(to State) error {
	// Resuming detail fetches is only legal once a collection exists.
	if s.state == FilterApplied && to == DetailFetch && !s.collected {
		return fmt.Errorf("%w: %s -> %s before collection", ErrBadTransition, s.state, to)
	}
	for _, next := range transitions[s.state] {
		if next == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrBadTransition, s.state, to)
}

// Close ends the session and closes its page. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Done {
		return nil
	}
	s.state = Done
	return s.page.Close()
}
