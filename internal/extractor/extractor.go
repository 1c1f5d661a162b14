// Package extractor turns source documents into ordered text chunks
// ready for embedding.
package extractor

import (
	"fmt"
	"strings"
)

// maxChunkChars caps a single chunk. Documents under the cap stay whole.
const maxChunkChars = 4000

// Chunk is one unit of extracted text. IDs are deterministic for a given
// input so re-ingesting a document replaces rather than duplicates.
type Chunk struct {
	ID   string
	Text string
}

// ExtractionError reports a failure to extract a specific source.
type ExtractionError struct {
	Locator string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Locator, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ChunkText splits plain text into chunks. Short documents become a single
// chunk; longer ones are packed sentence by sentence so no chunk splits a
// sentence in half.
func ChunkText(text string) []Chunk {
	text = collapseWhitespace(text)
	if text == "" {
		return nil
	}

	if len(text) <= maxChunkChars {
		return []Chunk{{ID: "chunk_1", Text: text}}
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("chunk_%d", len(chunks)+1),
			Text: strings.TrimSpace(b.String()),
		})
		b.Reset()
	}

	for _, s := range sentences {
		if b.Len() > 0 && b.Len()+len(s)+1 > maxChunkChars {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		// Oversized sentences get their own chunk rather than splitting.
		if b.Len() > maxChunkChars {
			flush()
		}
	}
	flush()

	return chunks
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. The punctuation stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (text[i+1] == ' ' || text[i+1] == '\n') {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// collapseWhitespace squeezes runs of spaces and tabs to a single space and
// trims each line, preserving line breaks.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		joined := strings.Join(fields, " ")
		if joined == "" {
			continue
		}
		out = append(out, joined)
	}
	return strings.Join(out, "\n")
}
