package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/lenslate/lenslate/internal/ocrlines"
)

// TesseractRecognizer runs local OCR through the gosseract client. A
// fresh client is created per call; gosseract clients are not safe for
// concurrent reuse.
type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer constructs the Tesseract-backed recognizer.
func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{clientFactory: gosseract.NewClient}
}

func (r *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize extracts text line fragments with normalized bottom-left
// geometry from the image.
func (r *TesseractRecognizer) Recognize(ctx context.Context, in Input) ([]ocrlines.Fragment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Image))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(ModelsForLanguage(in.Language)...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text lines: %w", err)
	}

	frags := make([]ocrlines.Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		frags = append(frags, ocrlines.Fragment{
			Text: text,
			Box:  normalizeBox(b.Box, cfg.Width, cfg.Height),
		})
	}
	if len(frags) == 0 {
		return nil, ErrNoTextRecognized
	}
	return frags, nil
}

// normalizeBox converts a top-left pixel rectangle into the normalized
// bottom-left space used for line reconstruction.
func normalizeBox(px image.Rectangle, width, height int) ocrlines.Rect {
	w := float64(width)
	h := float64(height)
	return ocrlines.Rect{
		X: float64(px.Min.X) / w,
		Y: (h - float64(px.Max.Y)) / h,
		W: float64(px.Dx()) / w,
		H: float64(px.Dy()) / h,
	}
}
