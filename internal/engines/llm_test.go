package engines

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lenslate/lenslate/internal/textnorm"
)

func newTestLLMEngine(t *testing.T, baseURL, shape string) *LLMEngine {
	t.Helper()
	e, err := NewLLMEngine(LLMConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "test-model",
		Shape:      shape,
		RateLimit:  100000,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewLLMEngine() error = %v", err)
	}
	return e
}

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestLLMEngineConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  LLMConfig
	}{
		{"missing api key", LLMConfig{BaseURL: "https://x", Model: "m"}},
		{"missing model", LLMConfig{APIKey: "k", BaseURL: "https://x"}},
		{"missing base url", LLMConfig{APIKey: "k", Model: "m"}},
		{"invalid base url", LLMConfig{APIKey: "k", Model: "m", BaseURL: "::bad::"}},
		{"unknown shape", LLMConfig{APIKey: "k", Model: "m", BaseURL: "https://x", Shape: "grpc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLLMEngine(tc.cfg)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *ConfigError", err)
			}
		})
	}
}

func TestLLMEngineChatShape(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		io.WriteString(w, chatReply("Hola mundo"))
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeChat)
	res, err := e.Translate(context.Background(), &Request{Text: "Hello world", Source: "en", Target: "es"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if res.Text != "Hola mundo" {
		t.Errorf("Text = %q, want %q", res.Text, "Hola mundo")
	}

	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v, want system+user", gotBody["messages"])
	}
	system := msgs[0].(map[string]any)["content"].(string)
	if !strings.Contains(system, textnorm.LineMarker) {
		t.Errorf("system prompt does not protect the line marker: %q", system)
	}
}

func TestLLMEngineResponsesShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path = %q, want /responses", r.URL.Path)
		}
		io.WriteString(w, `{"output":[{"type":"message","content":[{"type":"output_text","text":"Hallo Welt"}]}]}`)
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeResponses)
	res, err := e.Translate(context.Background(), &Request{Text: "Hello world", Source: "en", Target: "de"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if res.Text != "Hallo Welt" {
		t.Errorf("Text = %q, want %q", res.Text, "Hallo Welt")
	}
}

func TestLLMEngineAutoDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		json.Unmarshal(raw, &body)
		if _, ok := body["response_format"]; !ok {
			t.Error("auto-detect request missing response_format")
		}
		reply := "```json\n{\"detectedSourceLanguageCode\":\"ru\",\"translatedText\":\"Привет\"}\n```\nHope that helps."
		io.WriteString(w, chatReply(reply))
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeChat)
	res, err := e.Translate(context.Background(), &Request{Text: "Hello", Source: LanguageAuto, Target: "en"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if res.Text != "Привет" {
		t.Errorf("Text = %q, want %q", res.Text, "Привет")
	}
	if res.DetectedSource != "ru" {
		t.Errorf("DetectedSource = %q, want ru", res.DetectedSource)
	}
}

func TestLLMEngineRateLimited(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":"rate_limit_exceeded","message":"try again later"}}`)
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeChat)
	_, err := e.Translate(context.Background(), &Request{Text: "x", Source: "en", Target: "es"})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rle.Code != "rate_limit_exceeded" || rle.Message != "try again later" {
		t.Errorf("RateLimitError = %+v", rle)
	}
	// 429 must not be retried at the transport layer.
	if calls != 1 {
		t.Errorf("backend called %d times, want 1", calls)
	}
}

func TestLLMEngineStrictRetryPrompt(t *testing.T) {
	var system string
	var temperature float64 = -1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.Unmarshal(raw, &body)
		temperature = body.Temperature
		system = body.Messages[0].Content
		io.WriteString(w, chatReply("Hola"))
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeChat)
	if _, err := e.Translate(context.Background(), &Request{Text: "Hello", Source: "en", Target: "es", Strict: true}); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if temperature != 0 {
		t.Errorf("temperature = %v, want 0 for strict retry", temperature)
	}
	if !strings.Contains(system, "Never return the source text unchanged") {
		t.Errorf("strict system prompt missing no-echo clause: %q", system)
	}
}

func TestLLMEnginePreCleansCyrillicArtifactsUnderAuto(t *testing.T) {
	var userText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.Unmarshal(raw, &body)
		userText = body.Messages[1].Content
		io.WriteString(w, chatReply(`{"detectedSourceLanguageCode":"ru","translatedText":"ok"}`))
	}))
	defer srv.Close()

	e := newTestLLMEngine(t, srv.URL, ShapeChat)
	if _, err := e.Translate(context.Background(), &Request{Text: "ATOH HOBOE", Source: LanguageAuto, Target: "en"}); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if userText == "ATOH HOBOE" {
		t.Errorf("auto-detect request was not pre-cleaned: %q", userText)
	}
}
