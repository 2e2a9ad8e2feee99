package fimcp

import "encoding/json"

const jsonrpcVersion = "2.0"

// rpcRequest is the JSON-RPC request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcError is the remote error object of a response envelope.
type rpcError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// rpcResponse is the JSON-RPC response envelope. Exactly one of
// Result/Error is present.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// toolContent is one content item of a tool call result.
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolCallPayload is the result shape of a tools/call response.
type toolCallPayload struct {
	Content []toolContent `json:"content"`
}

// ToolInfo describes one entry of the remote tool catalog.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// toolListPayload is the result shape of a tools/list response.
type toolListPayload struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolResult is the outcome of a tool call. When the first content item
// was textual and parsed as JSON, Structured holds the parsed object and
// Raw is nil. Otherwise Raw carries the untouched result envelope and
// Structured is nil. Never both.
type ToolResult struct {
	Structured map[string]any
	Raw        json.RawMessage
}

// IsStructured reports whether the result carries a parsed object.
func (r *ToolResult) IsStructured() bool { return r.Structured != nil }
