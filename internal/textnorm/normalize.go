// Package textnorm provides whitespace/punctuation canonicalization shared by
// every stage of the OCR and translation pipeline.
package textnorm

import "strings"

// LineMarker is the reserved token that stands in for a newline (or a line
// boundary inside a batched chunk) across a translation call. Engines are
// instructed never to alter, translate, duplicate, or drop it, and the glyph
// correctors must never rewrite it.
const LineMarker = "[[NL]]"

// Normalize collapses all whitespace runs (including embedded newlines) to
// single spaces and trims leading/trailing whitespace.
// It is pure and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Equivalent reports whether two strings are equal after normalization.
// Used by the orchestrator's no-op translation detection.
func Equivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
