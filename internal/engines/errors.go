package engines

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyResponse is returned when a backend replies without usable text.
var ErrEmptyResponse = errors.New("backend returned no usable text")

// ConfigError reports missing or invalid engine configuration. It is
// surfaced immediately and never retried; the user must fix configuration.
type ConfigError struct {
	Engine string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine %s: invalid configuration for %s: %s", e.Engine, e.Field, e.Reason)
}

// TransportError reports a network failure or a non-2xx HTTP status other
// than 429. Not retried by the core.
type TransportError struct {
	Engine     string
	StatusCode int // 0 for network-level failures
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("engine %s: HTTP %d: %v", e.Engine, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError reports an HTTP 429 with whatever structure the backend
// provided. The orchestrator retries exactly once after a cooldown.
type RateLimitError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (HTTP %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// apiErrorBody is the structured error envelope some backends return.
// Code arrives as a string or a number depending on the backend.
type apiErrorBody struct {
	Error struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newRateLimitError builds a RateLimitError from a 429 response body,
// preferring the structured {error:{code,message}} envelope and falling back
// to the raw body text or a generic message.
func newRateLimitError(statusCode int, body []byte) *RateLimitError {
	e := &RateLimitError{StatusCode: statusCode, Code: "rate_limited"}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		switch c := parsed.Error.Code.(type) {
		case string:
			if c != "" {
				e.Code = c
			}
		case float64:
			e.Code = strconv.Itoa(int(c))
		}
		e.Message = parsed.Error.Message
		return e
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		e.Message = msg
		return e
	}
	e.Message = "too many requests, please retry shortly"
	return e
}
