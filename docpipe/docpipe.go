// Package docpipe acquires the page text of document files.
//
// Supported formats:
//   - .pdf   PDF, decoded page by page (pdfcpu content streams or ledongthuc rows)
//   - .docx  Microsoft Word (archive/zip, word/document.xml), explicit page breaks
//   - .html  HTML (x/net/html), one line per block element
//   - .txt   plain UTF-8 text, form feeds separate pages
//
// Every decoder preserves line breaks: downstream parsers rely on them.
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.AcquireFile(ctx, "/path/to/quiz.pdf")
//	text := doc.Text()
package docpipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file names with an unknown extension.
	ErrUnsupportedFormat = errors.New("docpipe: unsupported format")
	// ErrUnreadable is returned when the bytes cannot be decoded as the detected format.
	ErrUnreadable = errors.New("docpipe: unreadable document")
	// ErrTooLarge is returned when the document exceeds Config.MaxFileSize.
	ErrTooLarge = errors.New("docpipe: document too large")
)

// Pipeline is the document acquisition engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// MaxFileSize returns the effective size ceiling.
func (p *Pipeline) MaxFileSize() int64 { return p.cfg.MaxFileSize }

// Detect returns the document format based on the file extension.
func (p *Pipeline) Detect(name string) (Format, error) {
	return Detect(name)
}

// Detect returns the document format based on the file extension.
func Detect(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// AcquireFile opens path, acquires its text and releases the handle.
func (p *Pipeline) AcquireFile(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), p.cfg.MaxFileSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return p.Acquire(ctx, filepath.Base(path), f)
}

// Acquire reads a document named name from r and returns its pages.
// The format is detected from name. Pages with no text are kept so that
// page numbers stay aligned with the source.
func (p *Pipeline) Acquire(ctx context.Context, name string, r io.Reader) (*Document, error) {
	format, err := Detect(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, p.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, p.cfg.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("acquiring document", "name", name, "format", format, "bytes", len(data))

	var (
		pages   []Page
		quality *ExtractionQuality
	)
	switch format {
	case FormatPDF:
		pages, quality, err = p.decodePDF(data)
	case FormatDocx:
		pages, err = extractDocx(data)
	case FormatHTML:
		pages, err = extractHTML(data)
	case FormatTXT:
		pages, err = extractText(data)
	default:
		return nil, fmt.Errorf("%w: no decoder for %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire %s (%s): %w", name, format, err)
	}
	if quality == nil {
		quality = measureQuality(pages, false)
	}

	doc := &Document{
		Name:    name,
		Format:  format,
		Pages:   pages,
		Quality: quality,
	}
	p.logger.Debug("document acquired", "name", name, "pages", len(pages),
		"chars_per_page", quality.CharsPerPage, "needs_ocr", quality.NeedsOCR())
	return doc, nil
}

func (p *Pipeline) decodePDF(data []byte) ([]Page, *ExtractionQuality, error) {
	switch p.cfg.PDFDecoder {
	case DecoderContentStream:
		return extractPDF(data)
	case DecoderRows:
		pages, err := extractPDFRows(data)
		if err != nil {
			return nil, nil, err
		}
		return pages, measureQuality(pages, false), nil
	default:
		return nil, nil, fmt.Errorf("unknown pdf decoder %q", p.cfg.PDFDecoder)
	}
}

// SupportedFormats returns all supported format names.
func SupportedFormats() []string {
	return []string{string(FormatPDF), string(FormatDocx), string(FormatHTML), string(FormatTXT)}
}

// splitPages splits text on form feeds and cleans each page.
func splitPages(text string) []Page {
	parts := strings.Split(text, "\f")
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, Page{Number: i + 1, Text: cleanPageText(part)})
	}
	return pages
}

// cleanPageText collapses runs of horizontal whitespace, drops non-printable
// runes and blank lines, and keeps one line per source line.
func cleanPageText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out bytes.Buffer
	for _, line := range strings.Split(text, "\n") {
		line = collapseLine(line)
		if line == "" {
			continue
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
	}
	return out.String()
}
