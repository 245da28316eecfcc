package docpipe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/quizdoc/docpipe/docpipetest"
)

func TestExtractPDF_Simple(t *testing.T) {
	// WHAT: PDF with text content extracts correctly with quality metrics.
	// WHY: Core PDF extraction using pdfcpu must produce usable text.
	dir := t.TempDir()
	path := filepath.Join(dir, "text.pdf")
	if err := os.WriteFile(path, docpipetest.BuildTextPDF([]string{"Hello World from PDF extraction test"}), 0644); err != nil {
		t.Fatal(err)
	}

	pipe := New(Config{})
	doc, err := pipe.AcquireFile(context.Background(), path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if doc.Quality == nil {
		t.Fatal("expected non-nil Quality for PDF")
	}
	if doc.PageCount() != 1 {
		t.Fatalf("pages = %d, want 1", doc.PageCount())
	}
	if !strings.Contains(doc.Text(), "Hello World") {
		t.Errorf("text = %q, want it to contain Hello World", doc.Text())
	}
}

func TestExtractPDF_LinesAndPages(t *testing.T) {
	// WHAT: Each Td with a vertical move starts a new line; pages stay apart.
	// WHY: The line parser needs one question or option per line.
	raw := docpipetest.BuildTextPDF(
		[]string{"Q1. What is 2+2?", "A) 3", "B) 4", "C) 5", "D) 6", "Answer: B"},
		[]string{"Q2. Which is a prime?", "A) 4", "B) 6", "C) 7", "D) 8", "Answer: C"},
	)
	pipe := New(Config{})
	doc, err := pipe.Acquire(context.Background(), "quiz.pdf", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("page numbers = %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	want0 := "Q1. What is 2+2?\nA) 3\nB) 4\nC) 5\nD) 6\nAnswer: B"
	if doc.Pages[0].Text != want0 {
		t.Errorf("page 1 = %q, want %q", doc.Pages[0].Text, want0)
	}
	if !strings.HasPrefix(doc.Pages[1].Text, "Q2. Which is a prime?\nA) 4") {
		t.Errorf("page 2 = %q", doc.Pages[1].Text)
	}
	if !strings.Contains(doc.Text(), "Answer: B\nQ2.") {
		t.Errorf("pages must be joined by a line break: %q", doc.Text())
	}
}

func TestExtractPDF_ImageOnly(t *testing.T) {
	// WHAT: PDF without text but with image XObject returns NeedsOCR.
	// WHY: Image-only PDFs must be flagged, not mistaken for empty quizzes.
	pages, quality, err := extractPDF(docpipetest.BuildImageOnlyPDF())
	if err != nil {
		if !errors.Is(err, ErrUnreadable) {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if len(pages) != 1 || pages[0].Text != "" {
		t.Fatalf("pages = %+v, want one empty page", pages)
	}
	if !quality.HasImageStreams {
		t.Log("warning: image stream not detected on minimal PDF")
	}
}

func TestExtractPDF_Garbage(t *testing.T) {
	// WHAT: Bytes that are not a PDF map to ErrUnreadable for both decoders.
	// WHY: Callers distinguish unreadable uploads from empty results.
	for _, decoder := range PDFDecoders() {
		pipe := New(Config{PDFDecoder: decoder})
		_, err := pipe.Acquire(context.Background(), "broken.pdf", strings.NewReader("not a pdf at all"))
		if !errors.Is(err, ErrUnreadable) {
			t.Errorf("%s: err = %v, want ErrUnreadable", decoder, err)
		}
	}
}

func TestAcquire_UnknownDecoder(t *testing.T) {
	pipe := New(Config{PDFDecoder: "ocr"})
	_, err := pipe.Acquire(context.Background(), "quiz.pdf", bytes.NewReader(docpipetest.BuildTextPDF([]string{"x"})))
	if err == nil || !strings.Contains(err.Error(), "unknown pdf decoder") {
		t.Fatalf("err = %v, want unknown pdf decoder", err)
	}
}

func TestExtractTextFromStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"tj", "BT /F1 12 Tf 72 720 Td (Hello) Tj ET", "Hello"},
		{"vertical td", "BT 72 720 Td (Q1. One?) Tj 0 -14 Td (A\\) yes) Tj ET", "Q1. One?\nA) yes"},
		{"horizontal td", "BT 72 720 Td (A\\)) Tj 20 0 Td (yes) Tj ET", "A) yes"},
		{"t star", "BT 14 TL (first) Tj T* (second) Tj ET", "first\nsecond"},
		{"quote", "BT (first) Tj (second) ' ET", "first\nsecond"},
		{"tj array", "BT [(Ans) 10 (wer:) -250 (B)] TJ ET", "Answer: B"},
		{"separate objects", "BT (one) Tj ET BT (two) Tj ET", "one\ntwo"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"nested parens", "BT (f(a) is) Tj ET", "f(a) is"},
		{"octal escape", "BT (a\\040b) Tj ET", "a b"},
		{"tm", "BT 1 0 0 1 72 720 Tm (x) Tj 1 0 0 1 72 700 Tm (y) Tj ET", "x\ny"},
		{"comment", "% header\nBT (kept) Tj ET", "kept"},
		{"inline image", "BI /W 1 /H 1 ID \x00\x01) Tj EI BT (after) Tj ET", "after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTextFromStream([]byte(tt.stream)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
