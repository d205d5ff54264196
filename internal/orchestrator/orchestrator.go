package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lenslate/lenslate/internal/diaglog"
	"github.com/lenslate/lenslate/internal/engines"
	"github.com/lenslate/lenslate/internal/glyphfix"
	"github.com/lenslate/lenslate/internal/ocrlines"
	"github.com/lenslate/lenslate/internal/textnorm"
)

// Options tunes orchestration behavior. Zero values select defaults.
type Options struct {
	MaxChunkLines int
	MaxChunkChars int

	// Cooldown is how long to wait before the single rate-limit retry.
	Cooldown time.Duration

	// Debounce is the quiet period before a scheduled free-text
	// translation runs (see Session).
	Debounce time.Duration

	// SlowAfter is when a running translation surfaces the soft
	// "taking a while" signal (see Session).
	SlowAfter time.Duration
}

const (
	defaultCooldown  = 2 * time.Second
	defaultDebounce  = 400 * time.Millisecond
	defaultSlowAfter = 6 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxChunkLines <= 0 {
		o.MaxChunkLines = DefaultMaxChunkLines
	}
	if o.MaxChunkChars <= 0 {
		o.MaxChunkChars = DefaultMaxChunkChars
	}
	if o.Cooldown <= 0 {
		o.Cooldown = defaultCooldown
	}
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	if o.SlowAfter <= 0 {
		o.SlowAfter = defaultSlowAfter
	}
	return o
}

// Orchestrator drives translation calls for one engine. It is stateless
// between calls; per-session state (debounce, request tokens) lives in
// Session.
type Orchestrator struct {
	engine engines.Engine
	opts   Options
	logger *slog.Logger
	diag   *diaglog.Log
}

// New creates an orchestrator over the given engine.
func New(engine engines.Engine, opts Options, logger *slog.Logger, diag *diaglog.Log) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if diag == nil {
		diag = diaglog.New(0, logger)
	}
	return &Orchestrator{engine: engine, opts: opts.withDefaults(), logger: logger, diag: diag}
}

// TextResult is the outcome of a free-text translation.
type TextResult struct {
	Text           string
	DetectedSource string
}

// TranslateText translates a whole text blob, preserving paragraph
// structure through the reserved line marker.
func (o *Orchestrator) TranslateText(ctx context.Context, text, source, target string) (*TextResult, error) {
	encoded := EncodeMarkers(text)
	res, err := o.translateResilient(ctx, encoded, source, target)
	if err != nil {
		return nil, err
	}
	return &TextResult{
		Text:           DecodeMarkers(res.Text),
		DetectedSource: res.DetectedSource,
	}, nil
}

// TranslateLines translates reconstructed OCR lines, guaranteeing exactly
// one translated entry per source line in the original order. Batching
// engines get chunked batch calls with a per-line fallback on misalignment;
// other engines are driven line-by-line directly.
func (o *Orchestrator) TranslateLines(ctx context.Context, lines []ocrlines.Line, source, target string) ([]TranslatedLine, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	if !o.engine.SupportsBatching() {
		return o.translatePerLine(ctx, lines, source, target)
	}

	out := make([]TranslatedLine, 0, len(lines))
	for _, chunk := range chunkLines(lines, o.opts.MaxChunkLines, o.opts.MaxChunkChars) {
		translated, err := o.translateChunk(ctx, chunk, source, target)
		if err != nil {
			// A failed chunk is fatal for the whole multi-line request:
			// partial output would silently misalign with the overlay.
			return nil, err
		}
		out = append(out, translated...)
	}
	return out, nil
}

// translateChunk batch-translates one chunk and reattaches the split
// segments to the original geometry. Insufficient segments trigger the
// per-line fallback for this chunk.
func (o *Orchestrator) translateChunk(ctx context.Context, chunk []ocrlines.Line, source, target string) ([]TranslatedLine, error) {
	res, err := o.translateResilient(ctx, joinChunk(chunk), source, target)
	if err != nil {
		return nil, err
	}

	segments := SplitMarkers(res.Text)
	if len(segments) < len(chunk) {
		// Misaligned: the backend dropped or merged markers. Discard the
		// batch result and go line-by-line so counts always match.
		o.logger.Warn("chunk misaligned, falling back to per-line translation",
			"lines", len(chunk), "segments", len(segments))
		translated, err := o.translatePerLine(ctx, chunk, source, target)
		if err != nil {
			return nil, err
		}
		return translated, nil
	}

	// The backend occasionally over-splits; extra trailing segments are
	// discarded.
	return assembleLines(chunk, segments[:len(chunk)]), nil
}

func (o *Orchestrator) translatePerLine(ctx context.Context, lines []ocrlines.Line, source, target string) ([]TranslatedLine, error) {
	out := make([]TranslatedLine, 0, len(lines))
	for _, line := range lines {
		res, err := o.translateResilient(ctx, line.Text, source, target)
		if err != nil {
			// Per-line results up to the failure point are preserved.
			return out, err
		}
		out = append(out, TranslatedLine{Text: res.Text, SourceText: line.Text, Box: line.Box})
	}
	return out, nil
}

// translateResilient performs one logical translation: a single rate-limit
// retry after a cooldown, and for non-auto requests a single stricter retry
// when the backend returns a no-op translation.
func (o *Orchestrator) translateResilient(ctx context.Context, text, source, target string) (*engines.Result, error) {
	req := &engines.Request{
		Text:      text,
		Source:    source,
		Target:    target,
		RequestID: uuid.New().String(),
	}

	res, err := o.translateWithCooldown(ctx, req)
	if err != nil {
		return nil, err
	}

	if source == engines.LanguageAuto || !isNoOp(text, res.Text, target) {
		return res, nil
	}

	// The backend echoed the source (or answered in the wrong script).
	// Retry exactly once with the no-echo instruction and deterministic
	// sampling; if that also no-ops, the first result is the best we have.
	o.logger.Debug("no-op translation detected, retrying strict", "request_id", req.RequestID)
	strictReq := *req
	strictReq.Strict = true
	strictReq.RequestID = uuid.New().String()
	retryRes, err := o.translateWithCooldown(ctx, &strictReq)
	if err != nil || isNoOp(text, retryRes.Text, target) {
		return res, nil
	}
	return retryRes, nil
}

// translateWithCooldown calls the engine, retrying exactly once after a
// cooldown if the backend rate-limits. A second rate limit is terminal.
func (o *Orchestrator) translateWithCooldown(ctx context.Context, req *engines.Request) (*engines.Result, error) {
	res, err := o.engine.Translate(ctx, req)
	var rle *engines.RateLimitError
	if !errors.As(err, &rle) {
		return res, err
	}

	o.diag.Error(fmt.Sprintf("rate limited: %s (retrying in %s)", rle.Message, o.opts.Cooldown))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(o.opts.Cooldown):
	}

	res, err = o.engine.Translate(ctx, req)
	if errors.As(err, &rle) {
		o.diag.Error(fmt.Sprintf("rate limited again, giving up: %s", rle.Message))
		return nil, rle
	}
	return res, err
}

// isNoOp reports a failed translation: output identical to input after
// normalization, or output still in Cyrillic when the target is not a
// Cyrillic-script language.
func isNoOp(input, output, target string) bool {
	if textnorm.Equivalent(input, output) {
		return true
	}
	return glyphfix.ContainsCyrillic(output) && !cyrillicTarget(target)
}

func cyrillicTarget(target string) bool {
	target = strings.ToLower(target)
	if i := strings.IndexAny(target, "-_"); i >= 0 {
		target = target[:i]
	}
	return target == "ru" || target == "uk"
}
