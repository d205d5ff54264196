package ocrlines

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lenslate/lenslate/internal/glyphfix"
	"github.com/lenslate/lenslate/internal/textnorm"
)

const (
	// Fragments whose vertical centers differ by no more than this are
	// treated as the same visual row and ordered left-to-right.
	rowTolerance = 0.02

	// A longer line must exceed a shorter prefix line by at least this many
	// characters to be considered a progressive refinement of the same
	// physical line.
	prefixRefinementMargin = 8

	// Wrap-merge geometry: the previous line must run to at least this
	// fraction of the width, and the continuation must start no further in
	// than wrapLeftMax.
	wrapRightMin = 0.86
	wrapLeftMax  = 0.16

	// Vertical adjacency for wrap-merge: gap <= max(wrapGapFloor,
	// wrapGapHeightFactor * average line height).
	wrapGapFloor        = 0.02
	wrapGapHeightFactor = 0.75
)

// terminalPunct ends a sentence; a line ending with one of these is never
// treated as wrapped.
const terminalPunct = ".?!。？！；;:"

// Reconstructor turns unordered fragments into ordered, merged lines.
// The language hint controls which noise-correction heuristics apply.
type Reconstructor struct {
	lang   string
	logger *slog.Logger
}

// NewReconstructor creates a reconstructor for the given source language hint
// ("auto" to detect).
func NewReconstructor(lang string, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{lang: lang, logger: logger}
}

// Reconstruct converts fragments into reading-ordered, deduplicated,
// wrap-merged lines. Empty input yields empty output.
func (r *Reconstructor) Reconstruct(frags []Fragment) []Line {
	kept := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f.Text) != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	orderFragments(kept)

	lines := r.correct(kept)
	lines = dedupeAdjacent(lines)
	lines = mergeWrapped(lines)

	r.logger.Debug("reconstructed lines",
		"fragments", len(frags), "lines", len(lines), "lang", r.lang)
	return lines
}

// orderFragments sorts top-to-bottom (boxes use a bottom-left origin, so a
// larger Y is higher on screen), breaking near-equal rows left-to-right.
func orderFragments(frags []Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		ci, cj := frags[i].Box.CenterY(), frags[j].Box.CenterY()
		if diff := ci - cj; diff > rowTolerance || diff < -rowTolerance {
			return ci > cj
		}
		return frags[i].Box.X < frags[j].Box.X
	})
}

// correct normalizes each fragment's text and applies the language-gated
// glyph fixers.
func (r *Reconstructor) correct(frags []Fragment) []Line {
	applyCyrillic := glyphfix.ShouldApplyCyrillicFix(r.lang)

	sample := make([]string, 0, len(frags))
	for _, f := range frags {
		sample = append(sample, f.Text)
	}
	applySpanish := glyphfix.ShouldApplySpanishFix(r.lang, sample)

	lines := make([]Line, 0, len(frags))
	for _, f := range frags {
		text := textnorm.Normalize(f.Text)
		if applyCyrillic {
			text = glyphfix.FixCyrillicArtifacts(text)
		}
		if applySpanish {
			text = glyphfix.FixSpanishArtifacts(text)
		}
		lines = append(lines, newLine(text, f.Box))
	}
	return lines
}

// dedupeAdjacent drops exact adjacent duplicates and merges progressive OCR
// refinements of the same physical line (one text a strict prefix of the
// other, with enough extra length to rule out coincidence).
func dedupeAdjacent(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, cur := range lines {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		switch {
		case cur.Text == prev.Text:
			// Same physical line observed twice.
		case isRefinement(prev.Text, cur.Text):
			*prev = newLine(cur.Text, prev.Box.Union(cur.Box))
		case isRefinement(cur.Text, prev.Text):
			// Previous already holds the longer text; discard the shorter.
		default:
			out = append(out, cur)
		}
	}
	return out
}

func isRefinement(short, long string) bool {
	return len(long) >= len(short)+prefixRefinementMargin && strings.HasPrefix(long, short)
}

// mergeWrapped joins hard-wrapped continuations back into their first line:
// the previous line ran to the right margin without terminal punctuation, the
// current one starts back at the left margin, and the two are vertically
// adjacent.
func mergeWrapped(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, cur := range lines {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		if !shouldMergeWrap(*prev, cur) {
			out = append(out, cur)
			continue
		}
		*prev = newLine(joinWrapped(prev.Text, cur.Text), prev.Box.Union(cur.Box))
	}
	return out
}

func shouldMergeWrap(prev, cur Line) bool {
	if endsWithTerminalPunct(prev.Text) {
		return false
	}
	if prev.Box.MaxX() < wrapRightMin || cur.Box.X > wrapLeftMax {
		return false
	}
	gap := prev.Box.Y - (cur.Box.Y + cur.Box.H)
	maxGap := max(wrapGapFloor, wrapGapHeightFactor*(prev.Box.H+cur.Box.H)/2)
	return gap <= maxGap
}

func endsWithTerminalPunct(s string) bool {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return false
	}
	runes := []rune(s)
	return strings.ContainsRune(terminalPunct, runes[len(runes)-1])
}

// joinWrapped concatenates a wrapped continuation. A trailing hyphen means
// the word itself was split, so the hyphen is dropped and the halves joined
// directly.
func joinWrapped(prev, cur string) string {
	if strings.HasSuffix(prev, "-") {
		return strings.TrimSuffix(prev, "-") + cur
	}
	return prev + " " + cur
}
