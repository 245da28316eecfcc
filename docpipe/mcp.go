package docpipe

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quizdoc/kit"
	"github.com/hazyhaar/quizdoc/mcq"
)

// RegisterMCP registers the document inspection tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerAcquireTool(srv)
	p.registerFormatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- acquire ---

// strategyAuto runs the full primary-then-fallback chain.
const strategyAuto = "auto"

type acquireReq struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
}

// Inspection is what a document looks like to the MCQ parsers: its joined
// text, how trustworthy that text is, and optionally what one strategy
// recovers from it.
type Inspection struct {
	Name            string             `json:"name"`
	Format          Format             `json:"format"`
	Pages           int                `json:"pages"`
	Text            string             `json:"text"`
	QuestionMarkers int                `json:"question_markers"`
	Quality         *ExtractionQuality `json:"quality"`
	NeedsOCR        bool               `json:"needs_ocr"`
	VisualGap       bool               `json:"visual_gap"`
	Extraction      *mcq.Result        `json:"extraction,omitempty"`
}

// Inspect summarises doc and, when strategy is set, runs it over the text
// without metadata. strategy is "auto", "primary" or "fallback".
func Inspect(doc *Document, strategy string) (*Inspection, error) {
	text := doc.Text()
	in := &Inspection{
		Name:            doc.Name,
		Format:          doc.Format,
		Pages:           doc.PageCount(),
		Text:            text,
		QuestionMarkers: len(mcq.Segment(text)),
		Quality:         doc.Quality,
	}
	if q := doc.Quality; q != nil {
		in.NeedsOCR, in.VisualGap = q.NeedsOCR(), q.HasVisualGap()
	}

	switch strategy {
	case "":
	case strategyAuto:
		res := mcq.Extract(text, mcq.Meta{})
		in.Extraction = &res
	default:
		fn, ok := mcq.Lookup(mcq.Strategy(strategy))
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q (want %s, %s or %s)",
				strategy, strategyAuto, mcq.StrategyPrimary, mcq.StrategyFallback)
		}
		res := mcq.Run(fn, text, mcq.Meta{})
		in.Extraction = &res
	}
	return in, nil
}

func (p *Pipeline) registerAcquireTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name: "docpipe_acquire",
		Description: "Read a document file (pdf, docx, html, txt) and show the text the MCQ parsers see: " +
			"page count, joined text, Qn. markers found and text-quality flags. " +
			"With strategy, also run that parser over the text and return its records and failure report.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to read"},
			"strategy": map[string]any{
				"type":        "string",
				"description": "Parser to run; omit to only acquire",
				"enum":        []string{strategyAuto, string(mcq.StrategyPrimary), string(mcq.StrategyFallback)},
			},
		}, []string{"path"}),
	}

	endpoint := kit.Logging(p.logger, "docpipe_acquire")(func(ctx context.Context, req any) (any, error) {
		r := req.(*acquireReq)
		doc, err := p.AcquireFile(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		return Inspect(doc, r.Strategy)
	})

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[acquireReq]())
}

// --- formats ---

type formatsReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_formats",
		Description: "List the supported document formats, PDF decoders and size limit. With path, also report the format detected from its extension.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Optional file name to detect"},
		}, nil),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		out := map[string]any{
			"formats":       SupportedFormats(),
			"pdf_decoders":  PDFDecoders(),
			"pdf_decoder":   p.cfg.PDFDecoder,
			"max_file_size": p.MaxFileSize(),
		}
		if path := req.(*formatsReq).Path; path != "" {
			format, err := p.Detect(path)
			if err != nil {
				return nil, err
			}
			out["detected"] = format
		}
		return out, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[formatsReq]())
}
