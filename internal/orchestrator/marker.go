// Package orchestrator drives translation requests through an engine while
// preserving per-line correspondence, and keeps the system usable against an
// unreliable upstream: no-op detection, rate-limit cooldowns, and batch
// misalignment fallback.
package orchestrator

import (
	"regexp"
	"strings"

	"github.com/lenslate/lenslate/internal/textnorm"
)

// markerPadded is the reserved marker with the spacing it is sent with, so
// tokenizing models see it as a standalone token.
const markerPadded = " " + textnorm.LineMarker + " "

// markerPattern tolerates whatever whitespace the backend left around the
// marker on the way back.
var markerPattern = regexp.MustCompile(`\s*` + regexp.QuoteMeta(textnorm.LineMarker) + `\s*`)

// EncodeMarkers replaces literal newlines with the padded reserved marker
// before text is sent to a backend.
func EncodeMarkers(text string) string {
	return strings.ReplaceAll(text, "\n", markerPadded)
}

// DecodeMarkers restores real newlines after translation.
func DecodeMarkers(text string) string {
	return markerPattern.ReplaceAllString(text, "\n")
}

// SplitMarkers splits a translated chunk back into per-line segments.
func SplitMarkers(text string) []string {
	parts := markerPattern.Split(text, -1)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
