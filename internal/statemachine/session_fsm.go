package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
)

// Query session states
const (
	SessionIdle      = "idle"
	SessionFiltering = "filtering"
	SessionPaginated = "paginated"
)

// Query session events
const (
	EventFilter = "filter"
	EventPage   = "page"
	EventSettle = "settle"
	EventReset  = "reset"
)

// QuerySession tracks one user's browsing state over a listing: the active
// filter and the requested page. Changing the filter always sends the user
// back to page 1.
type QuerySession[F any] struct {
	mu     sync.Mutex
	filter F
	page   int
	fsm    *fsm.FSM
}

// NewQuerySession creates an idle session with the zero filter on page 1
func NewQuerySession[F any]() *QuerySession[F] {
	s := &QuerySession[F]{page: 1}

	s.fsm = fsm.NewFSM(
		SessionIdle,
		fsm.Events{
			// any → filtering
			{Name: EventFilter, Src: []string{SessionIdle, SessionFiltering, SessionPaginated}, Dst: SessionFiltering},

			// idle/filtering/paginated → paginated
			{Name: EventPage, Src: []string{SessionIdle, SessionFiltering, SessionPaginated}, Dst: SessionPaginated},

			// filtering → paginated once a query has served the new filter
			{Name: EventSettle, Src: []string{SessionFiltering}, Dst: SessionPaginated},

			// filtering/paginated → idle
			{Name: EventReset, Src: []string{SessionFiltering, SessionPaginated}, Dst: SessionIdle},
		},
		fsm.Callbacks{},
	)

	return s
}

// fire runs event, treating a self-transition as success
func (s *QuerySession[F]) fire(ctx context.Context, event string) error {
	err := s.fsm.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		return fmt.Errorf("failed to %s session: %w", event, err)
	}
	return nil
}

// SetFilter replaces the filter and resets the page to 1
func (s *QuerySession[F]) SetFilter(ctx context.Context, filter F) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(ctx, EventFilter); err != nil {
		return err
	}
	s.filter = filter
	s.page = 1
	return nil
}

// SetPage moves to page. Range checks happen when the query runs.
func (s *QuerySession[F]) SetPage(ctx context.Context, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(ctx, EventPage); err != nil {
		return err
	}
	s.page = page
	return nil
}

// Reset clears the filter and returns to page 1
func (s *QuerySession[F]) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fsm.Current() == SessionIdle {
		return nil
	}
	if err := s.fire(ctx, EventReset); err != nil {
		return err
	}
	var zero F
	s.filter = zero
	s.page = 1
	return nil
}

// Settle records the page the query actually served after clamping. A
// filtering session becomes paginated; idle and paginated sessions keep their state.
func (s *QuerySession[F]) Settle(ctx context.Context, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fsm.Current() == SessionFiltering {
		if err := s.fire(ctx, EventSettle); err != nil {
			return err
		}
	}
	s.page = page
	return nil
}

// State returns the current filter and page
func (s *QuerySession[F]) State() (F, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter, s.page
}

// Current returns the current state
func (s *QuerySession[F]) Current() string {
	return s.fsm.Current()
}

// Can checks if a transition is possible
func (s *QuerySession[F]) Can(event string) bool {
	return s.fsm.Can(event)
}
