// Package kit holds the transport-neutral pieces shared by the HTTP and MCP
// surfaces: the Endpoint abstraction and the Caller each request carries in
// its context.
package kit

import "context"

// Transport names recorded on a Caller.
const (
	TransportHTTP = "http"
	TransportMCP  = "mcp"
)

// RequestIDHeader carries the request ID over HTTP, including the HTTP
// transports of MCP.
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLen bounds caller-supplied request IDs; longer ones are
// replaced.
const MaxRequestIDLen = 128

// Caller describes who invoked an endpoint and over which surface.
type Caller struct {
	Transport  string
	RequestID  string
	RemoteAddr string // empty over MCP stdio
}

type callerKey struct{}

// WithCaller stores c in ctx. Empty fields of c keep the value already
// stored, so layers can add what they know.
func WithCaller(ctx context.Context, c Caller) context.Context {
	prev, _ := ctx.Value(callerKey{}).(Caller)
	if c.Transport == "" {
		c.Transport = prev.Transport
	}
	if c.RequestID == "" {
		c.RequestID = prev.RequestID
	}
	if c.RemoteAddr == "" {
		c.RemoteAddr = prev.RemoteAddr
	}
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the Caller stored in ctx. The transport defaults to
// HTTP.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	return c
}

// LogAttrs returns the caller as slog key/value pairs, empty fields omitted.
func (c Caller) LogAttrs() []any {
	attrs := []any{"transport", c.Transport}
	if c.RequestID != "" {
		attrs = append(attrs, "request_id", c.RequestID)
	}
	if c.RemoteAddr != "" {
		attrs = append(attrs, "remote_addr", c.RemoteAddr)
	}
	return attrs
}
