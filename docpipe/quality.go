package docpipe

import (
	"regexp"
	"strings"
	"unicode"
)

// ExtractionQuality captures metrics about how usable the acquired text is.
type ExtractionQuality struct {
	PageCount       int     `json:"page_count"`
	EmptyPages      int     `json:"empty_pages"`
	CharsPerPage    float64 `json:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams"`
	VisualRefCount  int     `json:"visual_ref_count"`
}

// NeedsOCR returns true if the document likely needs OCR to extract text.
func (q *ExtractionQuality) NeedsOCR() bool {
	return (q.CharsPerPage < 50 && q.HasImageStreams) || q.PrintableRatio < 0.85
}

// HasVisualGap returns true if the text references figures or tables and
// the document carries images the text layer cannot represent.
func (q *ExtractionQuality) HasVisualGap() bool {
	return q.VisualRefCount > 0 && q.HasImageStreams
}

func measureQuality(pages []Page, hasImages bool) *ExtractionQuality {
	var sb strings.Builder
	q := &ExtractionQuality{PageCount: len(pages), HasImageStreams: hasImages}
	chars := 0
	for _, p := range pages {
		if p.Text == "" {
			q.EmptyPages++
			continue
		}
		chars += len([]rune(p.Text))
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	if len(pages) > 0 {
		q.CharsPerPage = float64(chars) / float64(len(pages))
	}
	text := sb.String()
	q.PrintableRatio = computePrintableRatio(text)
	q.WordlikeRatio = computeWordlikeRatio(text)
	q.VisualRefCount = countVisualRefs(text)
	return q
}

// computePrintableRatio returns the ratio of printable characters in text.
// Excludes PUA U+E000-U+F8FF, control chars < U+0020 (except \n\r\t), U+FFFD.
func computePrintableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total := 0
	printable := 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF: // private use area
		return true
	case r == 0xFFFD:
		return true
	case r < 0x0020 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// computeWordlikeRatio returns the ratio of word-like tokens (length 2-15) to total tokens.
func computeWordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := len([]rune(f))
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

var visualRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(see|refer\s+to|shown\s+in)\s+(the\s+)?(figure|fig\.?|table|diagram|image|graph|chart)\s*\d`),
	regexp.MustCompile(`(?i)\b(figure|fig\.|table|diagram)\s+\d+`),
}

// countVisualRefs counts references to figures, tables, and diagrams in text.
// MCQ stems such as "Refer to figure 2" lose meaning once the image is gone.
func countVisualRefs(text string) int {
	count := 0
	for _, pat := range visualRefPatterns {
		count += len(pat.FindAllString(text, -1))
	}
	return count
}
