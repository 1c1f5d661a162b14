package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// lineBreakDisplacement is the vertical movement between two text fragments
// that marks the start of a new line on the page.
const lineBreakDisplacement = 5.0

// ExtractPDF extracts one chunk per page from PDF bytes. Pages without
// extractable text are skipped. Chunk IDs follow the page number, so
// "page_3" always refers to the third page even when earlier pages are
// empty. When no page yields usable text the whole document is extracted
// as plain text and split with the sentence packer instead.
func ExtractPDF(locator string, data []byte) ([]Chunk, error) {
	reader, err := pdf.NewReader(newBytesReaderAt(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Locator: locator, Err: fmt.Errorf("open pdf: %w", err)}
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, &ExtractionError{Locator: locator, Err: fmt.Errorf("document has no pages")}
	}

	var chunks []Chunk
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text := pageText(page)
		if text == "" {
			continue
		}

		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("page_%d", i),
			Text: text,
		})
	}

	if len(chunks) == 0 {
		chunks = wholeDocumentChunks(reader)
	}
	if len(chunks) == 0 {
		return nil, &ExtractionError{Locator: locator, Err: fmt.Errorf("no text content extracted")}
	}

	return chunks, nil
}

// pageText assembles a page's text fragments in reading order. The reader
// emits one fragment per glyph, spaces included, so fragments concatenate
// directly; a vertical jump larger than lineBreakDisplacement starts a new
// line. Content interpretation panics inside the pdf library on malformed
// streams, so a page that cannot be interpreted yields no text here and is
// left to the whole-document fallback.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	var b []byte
	prevY := content.Text[0].Y
	for _, frag := range content.Text {
		if dy := prevY - frag.Y; dy > lineBreakDisplacement || dy < -lineBreakDisplacement {
			b = append(b, '\n')
		}
		b = append(b, frag.S...)
		prevY = frag.Y
	}

	return collapseWhitespace(string(b))
}

// wholeDocumentChunks collects plain text page by page, skipping pages that
// fail to decode, and splits the joined text on sentence boundaries.
func wholeDocumentChunks(reader *pdf.Reader) []Chunk {
	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return ChunkText(strings.Join(parts, "\n"))
}

// bytesReaderAt adapts a byte slice to io.ReaderAt for the pdf reader.
type bytesReaderAt struct {
	data []byte
}

func newBytesReaderAt(data []byte) *bytesReaderAt {
	return &bytesReaderAt{data: data}
}

func (r *bytesReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset")
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n = copy(p, r.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}
