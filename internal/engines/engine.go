// Package engines abstracts over concrete translation backends. An Engine
// takes text plus source/target language codes and returns the translated
// text, reporting rate limits and failures as typed errors the orchestrator
// can act on.
package engines

import (
	"context"
	"time"
)

// LanguageAuto is the sentinel source-language code meaning "detect".
const LanguageAuto = "auto"

// Engine is the adapter contract every translation backend implements.
type Engine interface {
	// Translate performs one translation call. Rate limiting is reported
	// via *RateLimitError; other failures via typed or wrapped errors.
	Translate(ctx context.Context, req *Request) (*Result, error)

	// Name returns the engine identifier (e.g. "google", "llm").
	Name() string

	// SupportsBatching reports whether the orchestrator should batch
	// multi-line requests through this engine. Only the prompt-driven
	// model engines benefit; the simple reference engine is per-call
	// cheap and context-independent.
	SupportsBatching() bool
}

// Request describes one translation call.
type Request struct {
	// Text to translate. May contain the reserved line marker.
	Text string

	// Source language code, or LanguageAuto to detect.
	Source string

	// Target language code.
	Target string

	// Strict requests a no-echo retry: the engine must forbid returning
	// the source text unchanged and use deterministic sampling.
	Strict bool

	// RequestID for tracing; generated when empty.
	RequestID string
}

// Result is a successful translation.
type Result struct {
	// Text is the translated text, markers preserved.
	Text string

	// DetectedSource is the backend-reported source language code, set
	// only for auto-detect requests when the backend provides one.
	DetectedSource string

	// Engine identifier that produced this result.
	Engine string

	// RequestID echoes the request's ID.
	RequestID string

	// ExecutionTime is wall time for the backend call.
	ExecutionTime time.Duration
}
