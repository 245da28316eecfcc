package docpipe

import "log/slog"

// PDF decoders.
const (
	DecoderContentStream = "content-stream" // pdfcpu, operator-level decoding
	DecoderRows          = "rows"           // ledongthuc/pdf, row-grouped glyphs
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the maximum document size to read (default: 10 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// PDFDecoder selects how PDF pages are turned into text (default: content-stream).
	PDFDecoder string `json:"pdf_decoder" yaml:"pdf_decoder"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 10 << 20
	}
	if c.PDFDecoder == "" {
		c.PDFDecoder = DecoderContentStream
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// PDFDecoders lists the accepted PDFDecoder values.
func PDFDecoders() []string {
	return []string{DecoderContentStream, DecoderRows}
}
