package orchestrator

import (
	"strings"

	"github.com/lenslate/lenslate/internal/ocrlines"
)

// Chunk-size defaults. These are tunables, not correctness constants: the
// real boundary between "batch then split" and "must go line-by-line"
// depends on how reliably the backend preserves the marker count.
const (
	DefaultMaxChunkLines = 14
	DefaultMaxChunkChars = 2200
)

// chunkLines groups lines into batches bounded by a line count and a
// character budget (each line costs its length plus the join marker
// overhead). A single oversized line still gets its own chunk.
func chunkLines(lines []ocrlines.Line, maxLines, maxChars int) [][]ocrlines.Line {
	if maxLines <= 0 {
		maxLines = DefaultMaxChunkLines
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks [][]ocrlines.Line
	var cur []ocrlines.Line
	curChars := 0
	for _, line := range lines {
		cost := len(line.Text) + len(markerPadded)
		if len(cur) > 0 && (len(cur) >= maxLines || curChars+cost > maxChars) {
			chunks = append(chunks, cur)
			cur = nil
			curChars = 0
		}
		cur = append(cur, line)
		curChars += cost
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// joinChunk joins the chunk's line texts with the reserved marker.
func joinChunk(chunk []ocrlines.Line) string {
	texts := make([]string, len(chunk))
	for i, l := range chunk {
		texts[i] = l.Text
	}
	return strings.Join(texts, markerPadded)
}
