package engines

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lenslate/lenslate/internal/glyphfix"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the SDK-backed OpenAI engine.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string // Optional (tests)
	Temperature float64
	RateLimit   int // Requests per minute
	MaxRetries  int
	Timeout     time.Duration
	HTTPClient  *http.Client // Optional (tests)
}

// OpenAIEngine translates through the official OpenAI SDK. For stock OpenAI
// endpoints this is preferable to the hand-rolled LLMEngine; custom base
// URLs and endpoint shapes go through LLMEngine instead.
type OpenAIEngine struct {
	model       string
	temperature float64
	client      openai.Client
	limiter     *RateLimiter
}

// NewOpenAIEngine creates the engine.
func NewOpenAIEngine(cfg OpenAIConfig) (*OpenAIEngine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigError{Engine: OpenAIName, Field: "api_key", Reason: "missing credential"}
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEngine{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      openai.NewClient(opts...),
		limiter:     NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Name returns the engine identifier.
func (e *OpenAIEngine) Name() string { return OpenAIName }

// SupportsBatching reports that multi-line requests should be chunked
// through this engine.
func (e *OpenAIEngine) SupportsBatching() bool { return true }

// Translate performs one chat-completion translation call.
func (e *OpenAIEngine) Translate(ctx context.Context, req *Request) (*Result, error) {
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
	if auto && glyphfix.LooksLikeCyrillicArtifacts(text) {
		text = glyphfix.FixCyrillicArtifacts(text)
	}

	temperature := e.temperature
	if req.Strict {
		temperature = 0
	}

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req, auto)),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		mapped := mapOpenAIError(err)
		var rle *RateLimitError
		if errors.As(mapped, &rle) {
			e.limiter.Record429()
		}
		return nil, mapped
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	reply := completion.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyResponse
	}

	result := &Result{
		Engine:        OpenAIName,
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

// mapOpenAIError converts SDK errors into the engine error taxonomy.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			code := apiErr.Code
			if code == "" {
				code = "rate_limited"
			}
			msg := apiErr.Message
			if msg == "" {
				msg = "too many requests, please retry shortly"
			}
			return &RateLimitError{StatusCode: apiErr.StatusCode, Code: code, Message: msg}
		}
		return &TransportError{Engine: OpenAIName, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &TransportError{Engine: OpenAIName, Err: err}
}

// Verify interface
var _ Engine = (*OpenAIEngine)(nil)
