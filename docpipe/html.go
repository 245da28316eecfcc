package docpipe

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0(?:[^.1-9]|$)`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0(?:[^.1-9]|$)`),
	regexp.MustCompile(`(?i)position\s*:\s*absolute[^;]*-\d{4,}`),
}

var (
	pageBreakBeforeRe = regexp.MustCompile(`(?i)(page-break-before|break-before)\s*:\s*(always|page)`)
	pageBreakAfterRe  = regexp.MustCompile(`(?i)(page-break-after|break-after)\s*:\s*(always|page)`)
)

func styleOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "style" {
			return a.Val
		}
	}
	return ""
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	style := styleOf(n)
	if style == "" {
		return false
	}
	for _, pat := range hiddenStylePatterns {
		if pat.MatchString(style) {
			return true
		}
	}
	return false
}

// blockElements end the current line before and after their content.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true, atom.Br: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Pre: true, atom.Blockquote: true,
	atom.Section: true, atom.Article: true, atom.Dt: true, atom.Dd: true, atom.Hr: true,
}

// extractHTML returns the visible text of an HTML document, one line per
// block element. CSS page breaks split pages.
func extractHTML(data []byte) ([]Page, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrUnreadable, err)
	}
	var sb strings.Builder
	walkHTML(doc, &sb)
	return splitPages(sb.String()), nil
}

func walkHTML(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		// Source whitespace is kept (collapsed) so "<b>A</b>) x" stays "A) x".
		sb.WriteString(collapseSpaces(n.Data))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Template:
			return
		}
		if hasHiddenStyle(n) {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	style := ""
	if n.Type == html.ElementNode {
		style = styleOf(n)
	}
	if pageBreakBeforeRe.MatchString(style) {
		sb.WriteByte('\f')
	}
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, sb)
	}
	if block {
		sb.WriteByte('\n')
	}
	if pageBreakAfterRe.MatchString(style) {
		sb.WriteByte('\f')
	}
}
