package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lenslate/lenslate/internal/engines"
)

func waitForPhase(t *testing.T, s *Session, want Phase) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Phase == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %q (state: %+v)", want, s.Snapshot())
		}
	}
}

func TestSessionDebounceSupersedes(t *testing.T) {
	var calls atomic.Int64
	mock := engines.NewMockEngine()
	mock.Latency = 0
	mock.TranslateFunc = func(_ context.Context, req *engines.Request) (*engines.Result, error) {
		calls.Add(1)
		return &engines.Result{Text: "T:" + req.Text}, nil
	}
	o := New(mock, Options{Debounce: 30 * time.Millisecond, Cooldown: time.Millisecond, SlowAfter: time.Hour}, nil, nil)
	s := o.NewSession(context.Background())

	// Rapid keystrokes: only the last input should be translated.
	s.SetInput("h", "en", "es")
	s.SetInput("he", "en", "es")
	s.SetInput("hello", "en", "es")

	ev := waitForPhase(t, s, PhaseSucceeded)
	if ev.Result.Text != "T:hello" {
		t.Errorf("Result = %q, want translation of final input", ev.Result.Text)
	}
	if calls.Load() != 1 {
		t.Errorf("engine called %d times, want 1", calls.Load())
	}

	state := s.Snapshot()
	if state.Phase != PhaseSucceeded || state.Text != "T:hello" || state.InFlight {
		t.Errorf("state = %+v", state)
	}
}

func TestSessionStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	mock := engines.NewMockEngine()
	mock.Latency = 0
	mock.TranslateFunc = func(ctx context.Context, req *engines.Request) (*engines.Result, error) {
		if req.Text == "slow" {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return &engines.Result{Text: "T:" + req.Text}, nil
	}
	o := New(mock, Options{Debounce: time.Millisecond, Cooldown: time.Millisecond, SlowAfter: time.Hour}, nil, nil)
	s := o.NewSession(context.Background())

	s.Translate("slow", "en", "es")
	time.Sleep(10 * time.Millisecond) // let the slow request get in flight
	s.Translate("fast", "en", "es")

	waitForPhase(t, s, PhaseSucceeded)
	close(release) // stale request completes after the newer one

	time.Sleep(20 * time.Millisecond)
	if got := s.Snapshot().Text; got != "T:fast" {
		t.Errorf("stale result overwrote newer output: %q", got)
	}
}

func TestSessionCancelResetsState(t *testing.T) {
	started := make(chan struct{}, 1)
	mock := engines.NewMockEngine()
	mock.Latency = 0
	mock.TranslateFunc = func(ctx context.Context, req *engines.Request) (*engines.Result, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	o := New(mock, Options{Debounce: time.Millisecond, Cooldown: time.Millisecond, SlowAfter: time.Hour}, nil, nil)
	s := o.NewSession(context.Background())

	s.Translate("hello", "en", "es")
	<-started
	s.Cancel()

	time.Sleep(20 * time.Millisecond)
	state := s.Snapshot()
	if state.Phase != PhaseIdle || state.InFlight || state.LastErr != nil {
		t.Errorf("state after cancel = %+v, want idle", state)
	}
}

func TestSessionSlowSignal(t *testing.T) {
	release := make(chan struct{})
	mock := engines.NewMockEngine()
	mock.Latency = 0
	mock.TranslateFunc = func(ctx context.Context, req *engines.Request) (*engines.Result, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &engines.Result{Text: "done"}, nil
	}
	o := New(mock, Options{Debounce: time.Millisecond, Cooldown: time.Millisecond, SlowAfter: 15 * time.Millisecond}, nil, nil)
	s := o.NewSession(context.Background())

	s.Translate("hello", "en", "es")
	waitForPhase(t, s, PhaseSlow)

	// The soft signal must not cancel the request.
	close(release)
	ev := waitForPhase(t, s, PhaseSucceeded)
	if ev.Result.Text != "done" {
		t.Errorf("Result = %q, want %q", ev.Result.Text, "done")
	}
}
