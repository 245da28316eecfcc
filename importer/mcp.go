package importer

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quizdoc/kit"
)

// RegisterMCP registers the importer tools, and the pipeline tools, on an
// MCP server.
func (im *Importer) RegisterMCP(srv *mcp.Server) {
	im.registerFileTool(srv, "quizdoc_extract", true,
		"Extract MCQ records from a document file without storing them. Returns the strategy used, the records and the failure report.")
	im.registerFileTool(srv, "quizdoc_import", false,
		"Extract MCQ records from a document file and store them as a new import batch.")
	im.registerListTool(srv)
	im.registerStatsTool(srv)
	im.registerBatchesTool(srv)
	im.registerFormatsTool(srv)
	im.pipe.RegisterMCP(srv)
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

// --- extract / import ---

type fileReq struct {
	Path       string `json:"path"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Difficulty string `json:"difficulty"`
}

func (im *Importer) registerFileTool(srv *mcp.Server, name string, dryRun bool, desc string) {
	tool := &mcp.Tool{
		Name:        name,
		Description: desc,
		InputSchema: inputSchema(map[string]any{
			"path":       map[string]any{"type": "string", "description": "Document file path"},
			"topic":      map[string]any{"type": "string", "description": "Topic (configured default when empty)"},
			"subtopic":   map[string]any{"type": "string", "description": "Subtopic (configured default when empty)"},
			"difficulty": map[string]any{"type": "string", "description": "Difficulty level", "enum": im.cfg.Difficulties},
		}, []string{"path"}),
	}

	upload := im.UploadEndpoint()
	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*fileReq)
		u, f, err := OpenUpload(r.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		u.Topic, u.Subtopic, u.Difficulty = r.Topic, r.Subtopic, r.Difficulty
		return upload(ctx, &UploadRequest{Upload: u, DryRun: dryRun})
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[fileReq]())
}

// --- list ---

func (im *Importer) registerListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quizdoc_mcqs",
		Description: "List stored MCQ records, optionally filtered by topic, subtopic, difficulty or batch.",
		InputSchema: inputSchema(map[string]any{
			"topic":      map[string]any{"type": "string"},
			"subtopic":   map[string]any{"type": "string"},
			"difficulty": map[string]any{"type": "string"},
			"batch_id":   map[string]any{"type": "string"},
			"limit":      map[string]any{"type": "integer", "description": "Max records (default 100)"},
			"offset":     map[string]any{"type": "integer"},
		}, nil),
	}

	endpoint := im.endpoint("mcqs", func(ctx context.Context, req any) (any, error) {
		f := *req.(*Filter)
		if f.Limit <= 0 || f.Limit > maxPageSize {
			f.Limit = defaultPageSize
		}
		items, err := im.List(ctx, f)
		if err != nil {
			return nil, err
		}
		total, err := im.Count(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]any{"total": total, "items": items}, nil
	})

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[Filter]())
}

// --- stats ---

func (im *Importer) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quizdoc_stats",
		Description: "Count stored MCQ records in total, per difficulty and per topic.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := im.endpoint("stats", func(ctx context.Context, _ any) (any, error) {
		return im.Stats(ctx)
	})

	kit.RegisterMCPTool(srv, tool, endpoint, kit.NoArgs)
}

// --- batches ---

type batchesReq struct {
	Limit int `json:"limit"`
}

func (im *Importer) registerBatchesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quizdoc_batches",
		Description: "List recent import batches, newest first, with their failure reports.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max batches (default 50)"},
		}, nil),
	}

	endpoint := im.endpoint("batches", func(ctx context.Context, req any) (any, error) {
		batches, err := im.Batches(ctx, req.(*batchesReq).Limit)
		if err != nil {
			return nil, err
		}
		if batches == nil {
			batches = []Batch{}
		}
		return batches, nil
	})

	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[batchesReq]())
}

// --- formats ---

func (im *Importer) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "quizdoc_formats",
		Description: "List the accepted upload formats, the size limit and the difficulty levels.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"allowed_formats": im.AllowedFormats(),
			"max_file_size":   im.cfg.MaxFileSize,
			"difficulties":    im.cfg.Difficulties,
			"defaults":        im.cfg.Defaults,
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, kit.NoArgs)
}
