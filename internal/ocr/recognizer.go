// Package ocr turns screenshots into positioned text fragments suitable
// for line reconstruction.
package ocr

import (
	"context"
	"errors"

	"github.com/lenslate/lenslate/internal/ocrlines"
)

// ErrNoTextRecognized reports that the recognizer ran successfully but
// found no text in the image.
var ErrNoTextRecognized = errors.New("no text recognized in image")

// Input is one image to recognize. Language is an ISO 639-1 code or
// "auto"; it narrows the recognizer's script models when known.
type Input struct {
	Image    []byte
	Language string
	DPI      int
}

// Recognizer extracts positioned text fragments from an image. Fragment
// boxes use the normalized bottom-left coordinate space expected by
// ocrlines.Reconstructor.
type Recognizer interface {
	Recognize(ctx context.Context, in Input) ([]ocrlines.Fragment, error)
	Name() string
}

// traineddata model names keyed by ISO 639-1 source language.
var languageModels = map[string][]string{
	"en": {"eng"},
	"es": {"spa", "eng"},
	"ru": {"rus", "eng"},
	"uk": {"ukr", "eng"},
	"fr": {"fra", "eng"},
	"de": {"deu", "eng"},
	"it": {"ita", "eng"},
	"pt": {"por", "eng"},
	"ja": {"jpn", "eng"},
	"ko": {"kor", "eng"},
	"zh": {"chi_sim", "eng"},
}

// ModelsForLanguage maps a source language to recognizer models. An
// unknown or "auto" source keeps a broad default so text in any of the
// common scripts still comes back, at the cost of more glyph confusion
// for the corrector to clean up.
func ModelsForLanguage(lang string) []string {
	if models, ok := languageModels[lang]; ok {
		return models
	}
	return []string{"eng", "rus", "spa", "jpn", "chi_sim"}
}
