package engines

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockEngine is an Engine for testing. Behavior is configurable: a fixed
// response, a scripted sequence of outcomes, or a full TranslateFunc hook.
type MockEngine struct {
	// Configurable behavior
	Latency       time.Duration
	ResponseText  string
	Detected      string
	Batching      bool
	TranslateFunc func(ctx context.Context, req *Request) (*Result, error)

	// Script is consumed one entry per call when set (after TranslateFunc,
	// which takes precedence).
	mu     sync.Mutex
	script []scriptedOutcome

	requestCount atomic.Int64
}

type scriptedOutcome struct {
	result *Result
	err    error
}

// NewMockEngine creates a mock engine that echoes a fixed response.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Latency:      time.Millisecond,
		ResponseText: "mock translation",
		Batching:     true,
	}
}

// Name returns the engine identifier.
func (e *MockEngine) Name() string { return MockName }

// SupportsBatching reports the configured batching mode.
func (e *MockEngine) SupportsBatching() bool { return e.Batching }

// ScriptResult queues a successful outcome.
func (e *MockEngine) ScriptResult(text, detected string) *MockEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script = append(e.script, scriptedOutcome{result: &Result{Text: text, DetectedSource: detected, Engine: MockName}})
	return e
}

// ScriptError queues a failed outcome.
func (e *MockEngine) ScriptError(err error) *MockEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script = append(e.script, scriptedOutcome{err: err})
	return e
}

// Translate returns the next scripted outcome, or the fixed response.
func (e *MockEngine) Translate(ctx context.Context, req *Request) (*Result, error) {
	e.requestCount.Add(1)

	if e.Latency > 0 {
		select {
		case <-time.After(e.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.TranslateFunc != nil {
		return e.TranslateFunc(ctx, req)
	}

	e.mu.Lock()
	if len(e.script) > 0 {
		next := e.script[0]
		e.script = e.script[1:]
		e.mu.Unlock()
		if next.err != nil {
			return nil, next.err
		}
		r := *next.result
		r.RequestID = req.RequestID
		return &r, nil
	}
	e.mu.Unlock()

	return &Result{
		Text:           e.ResponseText,
		DetectedSource: e.Detected,
		Engine:         MockName,
		RequestID:      req.RequestID,
	}, nil
}

// RequestCount returns the number of Translate calls made.
func (e *MockEngine) RequestCount() int64 {
	return e.requestCount.Load()
}

// Reset clears the counter and any remaining script.
func (e *MockEngine) Reset() {
	e.requestCount.Store(0)
	e.mu.Lock()
	e.script = nil
	e.mu.Unlock()
}

// Verify interface
var _ Engine = (*MockEngine)(nil)
