package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quizdoc/idgen"
)

// Decoder turns the arguments of a tool call into the endpoint request.
type Decoder func(*mcp.CallToolRequest) (any, error)

// DecodeJSON returns a Decoder that unmarshals the arguments into a new T
// and passes a *T to the endpoint. Absent arguments leave T zero.
func DecodeJSON[T any]() Decoder {
	return func(req *mcp.CallToolRequest) (any, error) {
		r := new(T)
		if len(req.Params.Arguments) == 0 {
			return r, nil
		}
		if err := json.Unmarshal(req.Params.Arguments, r); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// NoArgs is the Decoder of tools that take no input.
func NoArgs(*mcp.CallToolRequest) (any, error) { return nil, nil }

// ToolError is the JSON payload of a failed tool call.
type ToolError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// RegisterMCPTool registers an Endpoint as an MCP tool. The context carries
// a Caller with transport "mcp" and the request ID taken from the HTTP
// header, then from _meta.request_id, else a fresh one. The response is a
// single JSON text content. Decode and endpoint errors come back as tool
// errors holding a ToolError, not as protocol errors.
func RegisterMCPTool(srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint, decode Decoder) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcpRequestID(req)
		ctx = WithCaller(ctx, Caller{Transport: TransportMCP, RequestID: id})

		in, err := decode(req)
		if err != nil {
			return toolError(id, fmt.Errorf("invalid arguments: %w", err)), nil
		}
		resp, err := endpoint(ctx, in)
		if err != nil {
			return toolError(id, err), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(id, fmt.Errorf("marshal %s result: %w", tool.Name, err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func mcpRequestID(req *mcp.CallToolRequest) string {
	var candidates []string
	if req.Extra != nil {
		candidates = append(candidates, req.Extra.Header.Get(RequestIDHeader))
	}
	if req.Params != nil {
		id, _ := req.Params.Meta["request_id"].(string)
		candidates = append(candidates, id)
	}
	for _, id := range candidates {
		if id != "" && len(id) <= MaxRequestIDLen {
			return id
		}
	}
	return idgen.New()
}

func toolError(requestID string, err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	data, _ := json.Marshal(ToolError{Error: err.Error(), RequestID: requestID})
	res.Content = []mcp.Content{&mcp.TextContent{Text: string(data)}}
	return &res
}
