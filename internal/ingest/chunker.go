package ingest

import "strings"

// Chunker splits page text into fixed-size overlapping character windows.
//
// Splitting is deterministic: identical input and parameters always yield
// the identical chunk sequence and boundaries. Windows are measured in runes
// so multibyte text never splits mid-character.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Size must be positive and overlap smaller
// than size; out-of-range values fall back to defaults matching config
// validation (size 1000, overlap size/4).
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split produces the chunk sequence for one page of text. Empty or
// whitespace-only text yields no chunks.
func (c *Chunker) Split(text, source string, page int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := c.size - c.overlap

	chunks := make([]Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Content: string(runes[start:end]),
			Source:  source,
			Page:    page,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
