package rag

import "fmt"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits raw document text into overlapping fixed-size pieces.
// Splitting works on runes so multi-byte text never gets cut mid-character.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the chunking parameters. The overlap must be strictly
// smaller than the size, otherwise the stride would be non-positive and
// splitting would never advance.
func NewChunker(size, overlap int) (*Chunker, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if size <= overlap {
		return nil, fmt.Errorf("chunk size (%d) must be greater than overlap (%d)", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into pieces of at most size runes, each consecutive pair
// sharing overlap runes. The final piece may be shorter. Order follows the
// original text. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
