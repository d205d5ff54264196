package glyphfix

import (
	"regexp"
	"strings"
)

// fullwidthPunct normalizes full-width/CJK punctuation look-alikes that OCR
// sometimes emits for Latin-script text.
var fullwidthPunct = strings.NewReplacer(
	"？", "?",
	"！", "!",
	"，", ",",
	"。", ".",
	"：", ":",
	"；", ";",
	"（", "(",
	"）", ")",
	"　", " ",
)

// invertedQuestion matches a line-initial (or sentence-initial) "i" that was
// actually an inverted question mark, recognizable because it is immediately
// followed by an uppercase or accented letter ("iQué..." -> "¿Qué...").
var invertedQuestion = regexp.MustCompile(`(^|[.!?]\s+|\n)i([A-ZÁÉÍÓÚÑÜ¿])`)

// accentFixes is a small fixed set of known accent-dropping misreads.
var accentFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bcuantas\b`), "cuántas"},
	{regexp.MustCompile(`\bCuantas\b`), "Cuántas"},
	{regexp.MustCompile(`\bgr[iu]a\b`), "grúa"},
	{regexp.MustCompile(`\bGr[iu]a\b`), "Grúa"},
}

// spanishMarkers is the fixed list of common Spanish words/greetings used by
// the auto-detect gate. Substring match, case-insensitive.
var spanishMarkers = []string{
	"hola",
	"gracias",
	"buenos días",
	"buenas",
	"por favor",
	"cómo",
	"qué",
	"usted",
	"verdad",
	"¿",
}

const spanishSampleLines = 12

// ShouldApplySpanishFix reports whether the Spanish artifact fixer should
// run: always under an explicit Spanish selection, or under auto-detect when
// a lexical scan of the first few sample lines finds common Spanish words.
func ShouldApplySpanishFix(languageHint string, sampleLines []string) bool {
	if baseLang(languageHint) == "es" {
		return true
	}
	if languageHint != "" && languageHint != "auto" {
		return false
	}
	if len(sampleLines) > spanishSampleLines {
		sampleLines = sampleLines[:spanishSampleLines]
	}
	sample := strings.ToLower(strings.Join(sampleLines, " "))
	for _, m := range spanishMarkers {
		if strings.Contains(sample, m) {
			return true
		}
	}
	return false
}

// FixSpanishArtifacts repairs common OCR damage to Spanish text: full-width
// punctuation, the misread inverted question mark, and a few known dropped
// accents. Appends the closing "?" when a corrected "¿verdad" ends the text
// without terminal punctuation.
func FixSpanishArtifacts(text string) string {
	text = fullwidthPunct.Replace(text)
	text = invertedQuestion.ReplaceAllString(text, "$1¿$2")
	for _, f := range accentFixes {
		text = f.re.ReplaceAllString(text, f.repl)
	}
	if trimmed := strings.TrimRight(text, " \t"); strings.HasSuffix(trimmed, "¿verdad") || strings.HasSuffix(trimmed, "¿Verdad") {
		text = trimmed + "?"
	}
	return text
}
