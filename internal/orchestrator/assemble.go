package orchestrator

import (
	"strings"

	"github.com/lenslate/lenslate/internal/ocrlines"
)

// TranslatedLine pairs a translated text with the geometry of the source
// line it replaces. Order matches the input lines.
type TranslatedLine struct {
	Text       string        `json:"text"`
	SourceText string        `json:"source_text"`
	Box        ocrlines.Rect `json:"box"`
}

// assembleLines zips translated segments back onto the original lines'
// geometry. Callers guarantee len(texts) == len(lines).
func assembleLines(lines []ocrlines.Line, texts []string) []TranslatedLine {
	out := make([]TranslatedLine, len(lines))
	for i, line := range lines {
		out[i] = TranslatedLine{Text: texts[i], SourceText: line.Text, Box: line.Box}
	}
	return out
}

// JoinLines flattens translated lines into display/copy text, one line per
// source line.
func JoinLines(lines []TranslatedLine) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}
