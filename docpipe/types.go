package docpipe

import "strings"

// Format identifies a document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
	FormatTXT  Format = "txt"
)

// Page is the text of one physical page, lines separated by '\n'.
type Page struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

// Document is the result of acquiring the text of a file.
type Document struct {
	Name    string             `json:"name"`
	Format  Format             `json:"format"`
	Pages   []Page             `json:"pages"`
	Quality *ExtractionQuality `json:"quality,omitempty"`
}

// Text concatenates the pages in order, each followed by a line break.
// Line breaks inside a page are preserved.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Pages {
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PageCount returns the number of pages, including empty ones.
func (d *Document) PageCount() int { return len(d.Pages) }
