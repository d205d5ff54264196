package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	GoogleFreeName    = "google"
	googleFreeBaseURL = "https://translate.googleapis.com"
	googleFreePath    = "/translate_a/single"
)

// GoogleFreeConfig holds configuration for the unauthenticated GET engine.
type GoogleFreeConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
}

// GoogleFreeEngine is the simple query-parameter GET-based reference engine.
// No auth and cheap per call, but it cannot batch, so the orchestrator
// drives it line by line.
type GoogleFreeEngine struct {
	baseURL string
	client  *http.Client
}

// NewGoogleFreeEngine creates the reference engine.
func NewGoogleFreeEngine(cfg GoogleFreeConfig) *GoogleFreeEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = googleFreeBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GoogleFreeEngine{baseURL: cfg.BaseURL, client: client}
}

// Name returns the engine identifier.
func (e *GoogleFreeEngine) Name() string { return GoogleFreeName }

// SupportsBatching reports that this engine translates line-by-line.
func (e *GoogleFreeEngine) SupportsBatching() bool { return false }

// Translate issues one GET request and concatenates the translated segments
// from the nested array response. The third top-level element carries the
// detected source language.
func (e *GoogleFreeEngine) Translate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", req.Source)
	q.Set("tl", req.Target)
	q.Set("dt", "t")
	q.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+googleFreePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Engine: GoogleFreeName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Engine: GoogleFreeName, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, newRateLimitError(resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Engine:     GoogleFreeName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	text, detected, err := parseGoogleFreeBody(body)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:           text,
		DetectedSource: detected,
		Engine:         GoogleFreeName,
		RequestID:      requestID,
		ExecutionTime:  time.Since(start),
	}, nil
}

// parseGoogleFreeBody decodes the nested array response: the first element
// is a list of [translatedSegment, originalSegment, ...] pairs whose
// translated parts concatenate into the full text; the third element is the
// detected language code.
func parseGoogleFreeBody(body []byte) (text, detected string, err error) {
	var root []any
	if err := json.Unmarshal(body, &root); err != nil {
		return "", "", fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(root) == 0 {
		return "", "", ErrEmptyResponse
	}

	segments, ok := root[0].([]any)
	if !ok {
		return "", "", fmt.Errorf("unexpected response shape: first element is not a list")
	}

	var b strings.Builder
	for _, seg := range segments {
		pair, ok := seg.([]any)
		if !ok || len(pair) == 0 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			b.WriteString(s)
		}
	}
	text = b.String()
	if text == "" {
		return "", "", ErrEmptyResponse
	}

	if len(root) > 2 {
		if s, ok := root[2].(string); ok {
			detected = s
		}
	}
	return text, detected, nil
}

// Verify interface
var _ Engine = (*GoogleFreeEngine)(nil)
