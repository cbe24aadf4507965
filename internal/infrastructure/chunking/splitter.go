package chunking

import (
	"strings"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// Splitter cuts section text into overlapping windows of at most chunkSize
// runes, preferring to break at a paragraph boundary, then a line break, then
// a space, then an arbitrary position.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Split chunks each section independently. Every chunk inherits the section's
// metadata plus its position within the section (chunk_index, total_chunks);
// the document-global index is assigned later by the ingestion pipeline.
func (s *Splitter) Split(sections []domain.Section) []domain.Chunk {
	var out []domain.Chunk
	for _, section := range sections {
		pieces := s.splitText(section.Text)
		for i, piece := range pieces {
			metadata := make(map[string]any, len(section.Metadata)+2)
			for k, v := range section.Metadata {
				metadata[k] = v
			}
			metadata["chunk_index"] = i
			metadata["total_chunks"] = len(pieces)
			out = append(out, domain.Chunk{
				Text:     piece,
				Metadata: metadata,
			})
		}
	}
	return out
}

func (s *Splitter) splitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	out := make([]string, 0, len(runes)/(s.chunkSize-s.overlap)+1)
	start := 0
	for {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			return out
		}

		cut := s.cutPoint(runes, start, end)
		out = append(out, string(runes[start:cut]))

		next := cut - s.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
}

// cutPoint picks the break position in (start, end], trying separators in
// priority order. The separator stays with the left chunk so that chunks are
// contiguous slices of the source and overlap removal reconstructs it.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	for p := end; p >= start+2; p-- {
		if runes[p-1] == '\n' && runes[p-2] == '\n' {
			return p
		}
	}
	for p := end; p >= start+1; p-- {
		if runes[p-1] == '\n' {
			return p
		}
	}
	for p := end; p >= start+1; p-- {
		if runes[p-1] == ' ' {
			return p
		}
	}
	return end
}
