package docpipe

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// extractText splits a UTF-8 text file into pages on form feeds.
func extractText(data []byte) ([]Page, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrUnreadable)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	// A trailing form feed closes the last page rather than opening a new one.
	text = strings.TrimRight(text, "\f\r\n")
	return splitPages(text), nil
}

// collapseSpaces replaces every whitespace run with a single space.
func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}
	return sb.String()
}

// collapseLine normalises one line: whitespace runs become one space,
// control characters become U+FFFD, ends are trimmed. Garbled glyph codes
// stay visible to quality scoring.
func collapseLine(line string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsControl(r):
			sb.WriteRune(utf8.RuneError)
			prevSpace = false
		default:
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
