package orchestrator

import (
	"context"
	"sync"
	"time"
)

// Phase is the observable state of a session's current request.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhasePreparing        Phase = "preparing"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseSlow             Phase = "slow" // soft signal; the request keeps running
	PhaseSucceeded        Phase = "succeeded"
	PhaseFailed           Phase = "failed"
)

// Event is one phase transition, tagged with the request token that caused
// it so observers can ignore stale transitions.
type Event struct {
	Phase  Phase
	Token  uint64
	Result *TextResult
	Err    error
}

// State is a snapshot of the session's output fields.
type State struct {
	Phase          Phase
	Text           string
	DetectedSource string
	InFlight       bool
	LastErr        error
}

// Session owns the mutable state for one logical translation target (one
// free-text box). Input changes are debounced; a newly issued request
// invalidates any prior in-flight one, and stale results are discarded by
// comparing a monotonically increasing request token before committing.
type Session struct {
	orc *Orchestrator

	mu      sync.Mutex
	token   uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	state   State
	events  chan Event
	baseCtx context.Context
}

// NewSession creates a session bound to ctx; cancelling ctx stops all
// pending and in-flight work.
func (o *Orchestrator) NewSession(ctx context.Context) *Session {
	return &Session{
		orc:     o,
		state:   State{Phase: PhaseIdle},
		events:  make(chan Event, 16),
		baseCtx: ctx,
	}
}

// Events exposes phase transitions. The channel is buffered and never
// blocks the session; slow observers lose intermediate events, not state.
// Snapshot always has the latest.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetInput schedules a translation of text after the debounce quiet period.
// Any pending scheduled run is cancelled and superseded; an in-flight
// request keeps running but its result will fail the token check.
func (s *Session) SetInput(text, source, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	token := s.token
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state.Phase = PhasePreparing
	s.emitLocked(Event{Phase: PhasePreparing, Token: token})

	s.timer = time.AfterFunc(s.orc.opts.Debounce, func() {
		s.run(token, text, source, target)
	})
}

// Translate runs immediately (no debounce), superseding any scheduled or
// in-flight request. Used for explicit "translate now" actions.
func (s *Session) Translate(text, source, target string) {
	s.mu.Lock()
	s.token++
	token := s.token
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	go s.run(token, text, source, target)
}

// Cancel stops the pending and in-flight work and resets the session to an
// idle, retryable state in one step.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++ // invalidate whatever is running
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = State{Phase: PhaseIdle}
	s.emitLocked(Event{Phase: PhaseIdle, Token: s.token})
}

func (s *Session) run(token uint64, text, source, target string) {
	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	s.state.Phase = PhaseAwaitingResponse
	s.state.InFlight = true
	s.emitLocked(Event{Phase: PhaseAwaitingResponse, Token: token})
	s.mu.Unlock()

	// Soft slow signal: surfaced without cancelling the request.
	slow := time.AfterFunc(s.orc.opts.SlowAfter, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if token == s.token && s.state.InFlight {
			s.emitLocked(Event{Phase: PhaseSlow, Token: token})
		}
	})
	defer slow.Stop()

	res, err := s.orc.TranslateText(ctx, text, source, target)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	// A superseded request must never overwrite newer output. Cancelled
	// tasks exit here without touching shared state.
	if token != s.token {
		return
	}
	s.cancel = nil
	s.state.InFlight = false
	if err != nil {
		s.state.Phase = PhaseFailed
		s.state.LastErr = err
		s.orc.diag.Error(err.Error())
		s.emitLocked(Event{Phase: PhaseFailed, Token: token, Err: err})
		return
	}
	s.state.Phase = PhaseSucceeded
	s.state.Text = res.Text
	s.state.DetectedSource = res.DetectedSource
	s.state.LastErr = nil
	s.emitLocked(Event{Phase: PhaseSucceeded, Token: token, Result: res})
}

// emitLocked sends an event without blocking; the mutex must be held.
func (s *Session) emitLocked(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
