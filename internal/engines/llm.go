package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/lenslate/lenslate/internal/glyphfix"
	"github.com/lenslate/lenslate/internal/textnorm"
)

const (
	LLMName = "llm"

	// Endpoint shapes. They differ only in how the reply text is
	// extracted, not in the Translate contract.
	ShapeChat      = "chat"
	ShapeResponses = "responses"

	chatPath      = "/chat/completions"
	responsesPath = "/responses"
)

// LLMConfig holds configuration for the prompt-driven chat engine.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Shape       string  // "chat" (default) or "responses"
	Temperature float64 // Default sampling temperature
	RateLimit   int     // Requests per minute
	MaxRetries  int     // Transport-level retry attempts
	RetryDelay  time.Duration
	Timeout     time.Duration
	HTTPClient  *http.Client // Optional (tests)
}

// LLMEngine is the primary model-backed engine: bearer-token authenticated
// POST JSON against a configurable base URL, model, and endpoint shape. This
// is the only engine the orchestrator batches through.
type LLMEngine struct {
	apiKey      string
	baseURL     string
	model       string
	shape       string
	temperature float64
	maxRetries  int
	retryDelay  time.Duration
	client      *http.Client
	limiter     *RateLimiter
}

// NewLLMEngine creates the engine, validating configuration up front:
// configuration problems surface immediately rather than on first call.
func NewLLMEngine(cfg LLMConfig) (*LLMEngine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigError{Engine: LLMName, Field: "api_key", Reason: "missing credential"}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ConfigError{Engine: LLMName, Field: "model", Reason: "missing model name"}
	}
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Engine: LLMName, Field: "base_url", Reason: "missing base URL"}
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Engine: LLMName, Field: "base_url", Reason: fmt.Sprintf("invalid URL %q", cfg.BaseURL)}
	}
	switch cfg.Shape {
	case "":
		cfg.Shape = ShapeChat
	case ShapeChat, ShapeResponses:
	default:
		return nil, &ConfigError{Engine: LLMName, Field: "shape", Reason: fmt.Sprintf("unknown endpoint shape %q", cfg.Shape)}
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &LLMEngine{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		shape:       cfg.Shape,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		client:      client,
		limiter:     NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Name returns the engine identifier.
func (e *LLMEngine) Name() string { return LLMName }

// SupportsBatching reports that multi-line requests should be chunked
// through this engine.
func (e *LLMEngine) SupportsBatching() bool { return true }

// Translate performs one translation call.
func (e *LLMEngine) Translate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	text := req.Text
	auto := req.Source == LanguageAuto
	// Under auto-detect the line-level corrector never ran, so pre-clean
	// obviously mangled Cyrillic before the model sees it.
	if auto && glyphfix.LooksLikeCyrillicArtifacts(text) {
		text = glyphfix.FixCyrillicArtifacts(text)
	}

	body, err := e.buildBody(text, req, auto)
	if err != nil {
		return nil, err
	}

	raw, err := e.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	reply, err := e.extractReply(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyResponse
	}

	result := &Result{
		Engine:        LLMName,
		RequestID:     requestID,
		ExecutionTime: time.Since(start),
	}
	if auto {
		translated, detected, err := extractAutoDetectReply(reply)
		if err != nil {
			return nil, fmt.Errorf("auto-detect reply: %w", err)
		}
		result.Text = translated
		result.DetectedSource = detected
	} else {
		result.Text = strings.TrimSpace(reply)
	}
	return result, nil
}

func (e *LLMEngine) buildBody(text string, req *Request, auto bool) ([]byte, error) {
	system := buildSystemPrompt(req, auto)
	temperature := e.temperature
	if req.Strict {
		temperature = 0
	}

	var payload any
	switch e.shape {
	case ShapeResponses:
		payload = map[string]any{
			"model":       e.model,
			"temperature": temperature,
			"input": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": text},
			},
		}
	default:
		body := map[string]any{
			"model":       e.model,
			"temperature": temperature,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": text},
			},
		}
		if auto {
			body["response_format"] = map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "translation",
					"strict": true,
					"schema": json.RawMessage(autoDetectSchemaJSON),
				},
			}
		}
		payload = body
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return out, nil
}

// buildSystemPrompt assembles the translation instruction. The marker
// clause is what makes paragraph structure survive a prose-oriented call.
func buildSystemPrompt(req *Request, auto bool) string {
	var b strings.Builder
	if auto {
		b.WriteString("You are a translation engine. Detect the source language and translate the user text into ")
		b.WriteString(req.Target)
		b.WriteString(". Reply with a single-line strict JSON object with exactly two fields: ")
		b.WriteString(`"detectedSourceLanguageCode" (ISO 639-1 code) and "translatedText". No code fences, no extra prose.`)
	} else {
		b.WriteString("You are a translation engine. Translate the user text from ")
		b.WriteString(req.Source)
		b.WriteString(" into ")
		b.WriteString(req.Target)
		b.WriteString(". Reply with the translation only: no explanations, no quotes.")
	}
	b.WriteString(" The token ")
	b.WriteString(textnorm.LineMarker)
	b.WriteString(" is a reserved line separator: never alter, translate, duplicate, or drop it, and keep every occurrence in its position.")
	if req.Strict {
		b.WriteString(" Never return the source text unchanged or in its original language; always produce the ")
		b.WriteString(req.Target)
		b.WriteString(" translation.")
	}
	return b.String()
}

// doRequest posts the body, retrying transient transport failures and 5xx
// responses. Rate limits are never retried here; the orchestrator owns the
// single-retry cooldown policy.
func (e *LLMEngine) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	path := chatPath
	if e.shape == ShapeResponses {
		path = responsesPath
	}

	var respBody []byte
	err := retry.Do(
		func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

			resp, err := e.client.Do(httpReq)
			if err != nil {
				return &TransportError{Engine: LLMName, Err: err}
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return &TransportError{Engine: LLMName, Err: fmt.Errorf("failed to read response: %w", err)}
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				e.limiter.Record429()
				return retry.Unrecoverable(newRateLimitError(resp.StatusCode, b))
			case resp.StatusCode >= 500:
				return &TransportError{
					Engine:     LLMName,
					StatusCode: resp.StatusCode,
					Err:        fmt.Errorf("%s", strings.TrimSpace(string(b))),
				}
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(&TransportError{
					Engine:     LLMName,
					StatusCode: resp.StatusCode,
					Err:        fmt.Errorf("%s", strings.TrimSpace(string(b))),
				})
			}
			respBody = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.maxRetries)),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

// extractReply pulls the assistant text out of the raw response, per shape.
func (e *LLMEngine) extractReply(raw []byte) (string, error) {
	if e.shape == ShapeResponses {
		var resp responsesResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return "", fmt.Errorf("failed to unmarshal responses body: %w", err)
		}
		if resp.OutputText != "" {
			return resp.OutputText, nil
		}
		for _, out := range resp.Output {
			for _, c := range out.Content {
				if c.Text != "" {
					return c.Text, nil
				}
			}
		}
		return "", ErrEmptyResponse
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal chat body: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Wire types for the two endpoint shapes.

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Verify interface
var _ Engine = (*LLMEngine)(nil)
