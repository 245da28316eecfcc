package docpipe

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFRows decodes pages with ledongthuc/pdf, grouping glyphs that
// share a baseline into one line. It copes with some generators whose
// content streams position every glyph individually.
func extractPDFRows(data []byte) (pages []Page, err error) {
	// ledongthuc/pdf panics on some malformed objects.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: pdf rows: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", ErrUnreadable, err)
	}

	n := r.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, Page{Number: i, Text: rowsPageText(r.Page(i))})
	}
	return pages, nil
}

// rowsPageText returns one line per text row, top to bottom. Unreadable
// pages yield empty text.
func rowsPageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, row := range rows {
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		sb.WriteByte('\n')
	}
	return cleanPageText(sb.String())
}
