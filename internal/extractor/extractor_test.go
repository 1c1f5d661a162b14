package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func TestChunkTextShortDocumentStaysWhole(t *testing.T) {
	chunks := ChunkText("A short answer. Another sentence.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].ID != "chunk_1" {
		t.Errorf("ID = %q, want chunk_1", chunks[0].ID)
	}
	if chunks[0].Text != "A short answer. Another sentence." {
		t.Errorf("Text = %q", chunks[0].Text)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if chunks := ChunkText(input); chunks != nil {
			t.Errorf("ChunkText(%q) = %v, want nil", input, chunks)
		}
	}
}

func TestChunkTextLongDocumentPacksSentences(t *testing.T) {
	sentence := strings.Repeat("word ", 100) + "end."
	text := strings.Repeat(sentence+" ", 20)

	chunks := ChunkText(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	for i, c := range chunks {
		wantID := "chunk_" + string(rune('1'+i))
		if i < 9 && c.ID != wantID {
			t.Errorf("chunk %d ID = %q, want %q", i, c.ID, wantID)
		}
		if !strings.HasSuffix(c.Text, "end.") {
			t.Errorf("chunk %d splits a sentence: ...%q", i, c.Text[len(c.Text)-20:])
		}
	}
}

func TestChunkTextDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	first := ChunkText(text)
	for run := 0; run < 3; run++ {
		again := ChunkText(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d chunks vs %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Errorf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestChunkTextCollapsesWhitespace(t *testing.T) {
	chunks := ChunkText("hello    world\t\tagain\n\n\nnext   line")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	want := "hello world again\nnext line"
	if chunks[0].Text != want {
		t.Errorf("Text = %q, want %q", chunks[0].Text, want)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Trailing fragment")
	want := []string{"First one.", "Second one!", "Third one?", "Trailing fragment"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentencesKeepsAbbreviationsTogetherAcrossNoSpace(t *testing.T) {
	got := splitSentences("Version 1.2 shipped. See notes.")
	want := []string{"Version 1.2 shipped.", "See notes."}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractPDFSkipsEmptyPages(t *testing.T) {
	chunks, err := ExtractPDF("policy.pdf", readFixture(t, "policy.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (empty second page must be filtered)", len(chunks))
	}
	if chunks[0].ID != "page_1" {
		t.Errorf("ID = %q, want page_1", chunks[0].ID)
	}

	text := chunks[0].Text
	if !strings.Contains(text, "refund policy allows returns") {
		t.Errorf("words must not be letter-spaced, got %q", text)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines %q, want 2 (vertical jump starts a new line)", len(lines), text)
	}
	if lines[0] != "Our refund policy allows returns within thirty days of purchase." {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "Contact support for anything else." {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestExtractPDFPagePerChunk(t *testing.T) {
	chunks, err := ExtractPDF("handbook.pdf", readFixture(t, "handbook.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ID != "page_1" || chunks[1].ID != "page_2" {
		t.Errorf("IDs = %q, %q, want page_1, page_2", chunks[0].ID, chunks[1].ID)
	}
	if chunks[0].Text != "Welcome to the support handbook." {
		t.Errorf("page 1 text = %q", chunks[0].Text)
	}
	if chunks[1].Text != "Escalate urgent issues to the on-call engineer." {
		t.Errorf("page 2 text = %q", chunks[1].Text)
	}
}

func TestExtractPDFDeterministicAcrossRuns(t *testing.T) {
	data := readFixture(t, "handbook.pdf")
	first, err := ExtractPDF("handbook.pdf", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := ExtractPDF("handbook.pdf", data)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d chunks vs %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Errorf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestExtractPDFFallsBackToWholeDocument(t *testing.T) {
	// The page's content stream carries a malformed positioning operator, so
	// per-page fragment assembly finds no text and the plain-text fallback
	// must take over.
	chunks, err := ExtractPDF("fallback.pdf", readFixture(t, "fallback.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].ID != "chunk_1" {
		t.Errorf("ID = %q, want chunk_1 (fallback uses the sentence packer's ids)", chunks[0].ID)
	}
	if !strings.Contains(chunks[0].Text, "Archived fallback content") {
		t.Errorf("Text = %q", chunks[0].Text)
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	_, err := ExtractPDF("broken.pdf", []byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected error for invalid pdf bytes")
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extErr.Locator != "broken.pdf" {
		t.Errorf("Locator = %q, want broken.pdf", extErr.Locator)
	}
}

func TestExtractionErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ExtractionError{Locator: "doc.pdf", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the inner error")
	}
	if !strings.Contains(err.Error(), "doc.pdf") {
		t.Errorf("Error() = %q, want it to name the locator", err.Error())
	}
}
