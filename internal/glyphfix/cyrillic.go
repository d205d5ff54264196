// Package glyphfix repairs systematic OCR misreads caused by visually similar
// glyphs across scripts. Corrections are deliberately conservative and
// pattern-gated rather than blanket substitutions: corrupting correct
// English/code text costs more user trust than a missed correction.
package glyphfix

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/lenslate/lenslate/internal/textnorm"
)

// confusables maps Latin letters (and the digits 3/0) to the Cyrillic letters
// they are most often misread as. One-to-one; characters outside the table are
// left alone during substitution.
var confusables = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н', 'K': 'К',
	'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т', 'X': 'Х', 'Y': 'У',
	'a': 'а', 'c': 'с', 'e': 'е', 'o': 'о', 'p': 'р', 'x': 'х',
	'y': 'у', 'k': 'к', 'm': 'м',
	'3': 'з', '0': 'о',
}

// Two idiom-level fixes for the most frequent whole-word misreads. These words
// are too short for the token suspicion test, so they get fixed by pattern.
// Applied only under explicit Cyrillic language selection, so collision with
// the English words "He"/"he" is not a concern here.
var (
	idiomVse = regexp.MustCompile(`\b[Bb]ce\b`)
	idiomNe  = regexp.MustCompile(`\b[Hh]e\b`)
)

const (
	suspicionMinLen  = 4
	suspicionRatio   = 0.70
	sampleTokenLimit = 60
	sampleSuspicious = 2
	allCapsMaxLen    = 6
)

// ShouldApplyCyrillicFix reports whether the Cyrillic artifact fixer should
// run at the line level. It requires an explicit Russian selection; it is
// never applied under auto-detect here because blanket correction of
// English/code tokens produced false positives.
func ShouldApplyCyrillicFix(languageHint string) bool {
	return baseLang(languageHint) == "ru"
}

// FixCyrillicArtifacts repairs text recognized as Latin that was actually
// Cyrillic. Steps, in order: strip stray symbols from unrelated scripts,
// apply the fixed idiom corrections, then substitute confusable characters in
// tokens that pass the suspicion test. The reserved line marker is never
// altered.
func FixCyrillicArtifacts(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = stripForeignScript(line)
		line = fixIdioms(line)
		lines[i] = fixTokens(line)
	}
	return strings.Join(lines, "\n")
}

// LooksLikeCyrillicArtifacts is the looser, sample-based heuristic used by
// the engine layer to decide whether to pre-clean text before translation
// under auto-detect. No language hint required.
func LooksLikeCyrillicArtifacts(text string) bool {
	if ContainsCyrillic(text) {
		return true
	}
	lower := strings.ToLower(text)
	if idiomVse.MatchString(lower) && idiomNe.MatchString(lower) {
		return true
	}
	suspicious := 0
	for i, tok := range strings.Fields(text) {
		if i >= sampleTokenLimit {
			break
		}
		if tok == textnorm.LineMarker {
			continue
		}
		if _, core, _ := splitPunct(tok); isSuspicious(core) {
			suspicious++
			if suspicious >= sampleSuspicious {
				return true
			}
		}
	}
	return false
}

// ContainsCyrillic reports whether any rune in s is in the Cyrillic range.
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func fixIdioms(line string) string {
	line = idiomVse.ReplaceAllStringFunc(line, func(m string) string {
		if m[0] == 'B' {
			return "Все"
		}
		return "все"
	})
	line = idiomNe.ReplaceAllStringFunc(line, func(m string) string {
		if m[0] == 'H' {
			return "Не"
		}
		return "не"
	})
	return line
}

func fixTokens(line string) string {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return line
	}
	for i, tok := range toks {
		if tok == textnorm.LineMarker {
			continue
		}
		prefix, core, suffix := splitPunct(tok)
		if !isSuspicious(core) {
			continue
		}
		mapped := substitute(core)
		if ContainsCyrillic(mapped) && len([]rune(mapped)) >= suspicionMinLen {
			mapped = normalizeCase(mapped)
		}
		toks[i] = prefix + mapped + suffix
	}
	return strings.Join(toks, " ")
}

// isSuspicious implements the token suspicion test: the core must be at least
// four characters, must not look like an identifier or path, must not be
// purely numeric, must be at least 70% confusable characters, and must show
// at least one anomaly signal (a digit, mixed case, or short all-caps).
func isSuspicious(core string) bool {
	runes := []rune(core)
	if len(runes) < suspicionMinLen {
		return false
	}
	if strings.ContainsAny(core, `/\-`) {
		return false
	}

	var digits, upper, lower, confusable int
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
		if unicode.IsUpper(r) {
			upper++
		}
		if unicode.IsLower(r) {
			lower++
		}
		if _, ok := confusables[r]; ok {
			confusable++
		}
	}
	if digits == len(runes) {
		return false
	}
	if float64(confusable)/float64(len(runes)) < suspicionRatio {
		return false
	}

	// Anomaly signals: OCR noise tends to mix digits and erratic casing.
	// Legitimate long acronyms (product codes) are excluded by the length cap.
	switch {
	case digits > 0:
		return true
	case upper >= 2 && lower >= 1:
		return true
	case lower == 0 && upper == len(runes) && len(runes) <= allCapsMaxLen:
		return true
	}
	return false
}

func substitute(core string) string {
	var b strings.Builder
	b.Grow(len(core))
	for _, r := range core {
		if c, ok := confusables[r]; ok {
			b.WriteRune(c)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeCase rewrites a substituted token to "first letter upper, rest
// lower". OCR commonly yields erratic casing for misread Cyrillic.
func normalizeCase(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

// stripForeignScript drops CJK/Hangul/Kana runes that occasionally leak into
// a Cyrillic recognition pass.
func stripForeignScript(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) ||
			unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return -1
		}
		return r
	}, s)
}

// splitPunct separates leading and trailing punctuation from a token,
// returning (prefix, core, suffix).
func splitPunct(tok string) (string, string, string) {
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && isEdgePunct(runes[start]) {
		start++
	}
	for end > start && isEdgePunct(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func baseLang(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexAny(hint, "-_"); i >= 0 {
		hint = hint[:i]
	}
	return hint
}
