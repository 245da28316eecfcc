package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// tjSpaceThreshold is the TJ displacement, in thousandths of a text space
// unit, beyond which a gap is read as a word break.
const tjSpaceThreshold = 200

// extractPDF decodes every page's content stream with pdfcpu.
// Pages whose content cannot be decoded are returned empty.
func extractPDF(data []byte) ([]Page, *ExtractionQuality, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: pdfcpu read: %v", ErrUnreadable, err)
	}

	pages := make([]Page, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, Page{Number: pageNr, Text: extractPageText(ctx, pageNr)})
	}
	return pages, measureQuality(pages, detectImageStreams(ctx)), nil
}

// extractPageText extracts text from a single PDF page via pdfcpu content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// detectImageStreams checks if the PDF contains image XObjects.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// extractTextFromStream interprets the text operators of a content stream.
// Tj, TJ, ' and " show text. T*, ', ", Tm, ET and any Td/TD with a vertical
// move end the current line; a horizontal-only Td/TD inserts a space.
func extractTextFromStream(data []byte) string {
	var (
		w        lineWriter
		operands []operand
		array    []operand
		inArray  bool
	)
	lx := &contentLexer{data: data}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString, tokNumber:
			op := operand{kind: tok.kind, text: tok.text, num: tok.num}
			if inArray {
				array = append(array, op)
			} else {
				operands = append(operands, op)
			}
		case tokArrayStart:
			inArray = true
			array = array[:0]
		case tokArrayEnd:
			inArray = false
			operands = append(operands, operand{kind: tokArrayEnd, items: append([]operand(nil), array...)})
		case tokOperator:
			applyTextOperator(&w, tok.text, operands)
			operands = operands[:0]
			if tok.text == "ID" {
				lx.skipInlineImage()
			}
		}
	}
	w.newline()
	return cleanPageText(w.String())
}

func applyTextOperator(w *lineWriter, op string, operands []operand) {
	switch op {
	case "Tj":
		w.text(lastString(operands))
	case "TJ":
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].kind != tokArrayEnd {
				continue
			}
			for _, item := range operands[i].items {
				switch item.kind {
				case tokString:
					w.text(item.text)
				case tokNumber:
					if item.num < -tjSpaceThreshold {
						w.space()
					}
				}
			}
			break
		}
	case "'", "\"":
		w.newline()
		w.text(lastString(operands))
	case "Td", "TD":
		if n := len(operands); n >= 2 && operands[n-1].kind == tokNumber && operands[n-1].num != 0 {
			w.newline()
		} else {
			w.space()
		}
	case "T*", "Tm", "ET":
		w.newline()
	}
}

func lastString(operands []operand) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokString {
			return operands[i].text
		}
	}
	return ""
}

// lineWriter accumulates shown text, never emitting empty lines or
// leading spaces.
type lineWriter struct {
	sb      strings.Builder
	hasText bool
}

func (w *lineWriter) text(s string) {
	if s == "" {
		return
	}
	w.sb.WriteString(s)
	w.hasText = true
}

func (w *lineWriter) space() {
	if w.hasText {
		w.sb.WriteByte(' ')
	}
}

func (w *lineWriter) newline() {
	if w.hasText {
		w.sb.WriteByte('\n')
		w.hasText = false
	}
}

func (w *lineWriter) String() string { return w.sb.String() }

type tokenKind int

const (
	tokOther tokenKind = iota
	tokString
	tokNumber
	tokOperator
	tokArrayStart
	tokArrayEnd
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type operand struct {
	kind  tokenKind
	text  string
	num   float64
	items []operand
}

// contentLexer splits a PDF content stream into tokens.
type contentLexer struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, text: decodePDFString(l.readLiteral())}, true
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOther}, true
			}
			l.pos++
			return token{kind: tokString, text: l.readHex()}, true
		case c == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokOther}, true
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			l.pos++
			l.readRegular()
			return token{kind: tokOther}, true
		case c == '{' || c == '}' || c == ')':
			l.pos++
			return token{kind: tokOther}, true
		default:
			word := l.readRegular()
			if word == "" {
				l.pos++
				continue
			}
			if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
				if n, err := strconv.ParseFloat(word, 64); err == nil {
					return token{kind: tokNumber, text: word, num: n}, true
				}
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

func (l *contentLexer) readRegular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// readLiteral returns the raw bytes of a literal string whose opening
// parenthesis has been consumed. Balanced parentheses nest.
func (l *contentLexer) readLiteral() []byte {
	start := l.pos
	depth := 1
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw := l.data[start:l.pos]
				l.pos++
				return raw
			}
		}
		l.pos++
	}
	return l.data[start:min(l.pos, len(l.data))]
}

// readHex decodes a hex string whose '<' has been consumed.
func (l *contentLexer) readHex() string {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // '>'
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return ""
		}
		out = append(out, byte(v))
	}
	return latin1(out)
}

// skipInlineImage skips binary inline image data up to the EI operator.
func (l *contentLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isPDFSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isPDFSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// decodePDFString handles PDF literal string escape sequences.
func decodePDFString(raw []byte) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\n':
			// Line continuation.
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out = append(out, byte(val))
			} else {
				out = append(out, raw[i])
			}
		}
	}
	return latin1(out)
}

// latin1 maps single-byte codes to runes. Simple fonts in the documents we
// handle use Standard or WinAnsi encoding, which agree with Latin-1 on
// printable ASCII.
func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
