// Package ocrlines converts unordered OCR text observations into
// reading-ordered, deduplicated, wrap-merged lines with bounding geometry.
package ocrlines

import "github.com/google/uuid"

// Rect is a normalized bounding box in 0..1 coordinates with a bottom-left
// origin, matching what the OCR collaborator produces.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// CenterY returns the vertical center of the rect.
func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// MaxX returns the right edge of the rect.
func (r Rect) MaxX() float64 {
	return r.X + r.W
}

// Fragment is one OCR-recognized text region. Fragments are immutable and
// carry no global ordering.
type Fragment struct {
	Text string `json:"text"`
	Box  Rect   `json:"box"`
}

// Line is a reading-order, possibly multi-fragment, deduplicated unit of text
// with a bounding box. Merge operations replace lines rather than mutating
// them in place; translation later copies a line with new text onto the same
// geometry.
type Line struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Box  Rect   `json:"box"`
}

func newLine(text string, box Rect) Line {
	return Line{ID: uuid.New().String(), Text: text, Box: box}
}

// WithText returns a copy of the line carrying new text on the original
// geometry.
func (l Line) WithText(text string) Line {
	return Line{ID: l.ID, Text: text, Box: l.Box}
}
