package fimcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	xhttp "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/http"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
)

const (
	sessionHeader = "Mcp-Session-Id"
	streamSuffix  = "/mcp/stream"
	loginPath     = "/login"

	methodInitialize = "initialize"
	methodToolsList  = "tools/list"
	methodToolsCall  = "tools/call"
)

// Transport is the request/response exchange the client runs on.
// Satisfied by pkg/http.Client.
type Transport interface {
	SendRequest(ctx context.Context, opts *xhttp.RequestOptions) (*http.Response, error)
}

// Config holds the remote endpoint and client identity declared during
// the handshake.
type Config struct {
	BaseURL         string
	ProtocolVersion string
	ClientName      string
	ClientVersion   string
	Timeout         time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.http = t }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a stateful session client for the remote tool-invocation
// service. One client holds one session and does not retry. Initialize
// and Authenticate must complete before tool calls. The remote binds
// state to the session id, so callers must not issue overlapping tool
// calls on one client; serialize them.
type Client struct {
	cfg    Config
	http   Transport
	logger *logger.Logger

	sessionID     string
	authenticated bool
	nextID        atomic.Int64
}

// New creates an uninitialized client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{cfg: cfg}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
	if c.logger == nil {
		c.logger, _ = logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	}

	return c
}

// SessionID returns the opaque session identifier, empty until Initialize.
func (c *Client) SessionID() string { return c.sessionID }

// Authenticated reports whether the login endpoint accepted the identity.
func (c *Client) Authenticated() bool { return c.authenticated }

// Initialize performs the protocol handshake and captures the session
// identifier from the response header.
func (c *Client) Initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": c.cfg.ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    c.cfg.ClientName,
			"version": c.cfg.ClientVersion,
		},
	}

	resp, err := c.post(ctx, methodInitialize, params, false)
	if err != nil {
		return &SessionInitializationError{Reason: "handshake failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SessionInitializationError{
			Reason: "handshake failed",
			Err:    &TransportError{Op: methodInitialize, Status: resp.StatusCode},
		}
	}

	// Header lookup is case-insensitive per net/http canonicalization.
	sessionID := resp.Header.Get(sessionHeader)
	if sessionID == "" {
		return &SessionInitializationError{Reason: "no session id in response"}
	}

	c.sessionID = sessionID
	c.logger.Info("session initialized", logger.String("session_id", sessionID))
	return nil
}

// Authenticate posts the session id and the caller-supplied identity to
// the login endpoint. It requires a prior Initialize and a non-empty
// identity; both are checked before any network call.
func (c *Client) Authenticate(ctx context.Context, identity string) error {
	if c.sessionID == "" {
		return &InvalidStateError{Op: "authenticate", Reason: "session not initialized"}
	}
	if identity == "" {
		return &InvalidStateError{Op: "authenticate", Reason: "identity is required"}
	}
	if c.authenticated {
		return nil
	}

	form := url.Values{}
	form.Set("sessionId", c.sessionID)
	form.Set("phoneNumber", identity)

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.loginURL(),
		Form:   form,
	})
	if err != nil {
		return &TransportError{Op: "authenticate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthenticationError{Status: resp.StatusCode}
	}

	c.authenticated = true
	c.logger.Info("session authenticated")
	return nil
}

// ListTools fetches the remote tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	if c.sessionID == "" {
		return nil, &InvalidStateError{Op: "tools/list", Reason: "session not initialized"}
	}

	env, err := c.roundTrip(ctx, methodToolsList, nil)
	if err != nil {
		return nil, &ToolDiscoveryError{Err: err}
	}
	if env.Error != nil {
		return nil, &ToolDiscoveryError{Err: fmt.Errorf("remote error: %s", env.Error.Message)}
	}

	var payload toolListPayload
	if err := json.Unmarshal(env.Result, &payload); err != nil {
		return nil, &ToolDiscoveryError{Err: fmt.Errorf("decode catalog: %w", err)}
	}
	return payload.Tools, nil
}

// CallTool invokes a named tool and returns its content as a tagged
// union. Textual content that parses as JSON comes back structured;
// anything else comes back raw. A failed trial parse is logged and
// degrades to raw instead of failing the call.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	if c.sessionID == "" {
		return nil, &InvalidStateError{Op: "tools/call", Reason: "session not initialized"}
	}

	if args == nil {
		args = map[string]any{}
	}
	params := map[string]any{
		"name":      name,
		"arguments": args,
	}

	env, err := c.roundTrip(ctx, methodToolsCall, params)
	if err != nil {
		return nil, err
	}
	if env.Error != nil {
		return nil, &ToolCallError{Tool: name, Message: env.Error.Message}
	}

	var payload toolCallPayload
	if err := json.Unmarshal(env.Result, &payload); err != nil || len(payload.Content) == 0 {
		return &ToolResult{Raw: env.Result}, nil
	}

	first := payload.Content[0]
	if first.Type != "text" {
		return &ToolResult{Raw: env.Result}, nil
	}

	var structured map[string]any
	if err := json.Unmarshal([]byte(first.Text), &structured); err != nil {
		perr := &ParseError{Tool: name, Err: err}
		c.logger.Warn("tool content not valid JSON, returning raw result", logger.Error(perr))
		return &ToolResult{Raw: env.Result}, nil
	}

	return &ToolResult{Structured: structured}, nil
}

// roundTrip sends one JSON-RPC exchange carrying the session header.
// Correlation ids come from a per-client counter, never wall-clock time.
func (c *Client) roundTrip(ctx context.Context, method string, params any) (*rpcResponse, error) {
	req := rpcRequest{
		JSONRPC: jsonrpcVersion,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.cfg.BaseURL,
		Headers: map[string]string{sessionHeader: c.sessionID},
		Body:    req,
	})
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: method, Status: resp.StatusCode}
	}

	var env rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	return &env, nil
}

// post sends a JSON-RPC request without consuming the response body,
// so the caller can read headers. Used by Initialize.
func (c *Client) post(ctx context.Context, method string, params any, withSession bool) (*http.Response, error) {
	req := rpcRequest{
		JSONRPC: jsonrpcVersion,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	headers := map[string]string{}
	if withSession && c.sessionID != "" {
		headers[sessionHeader] = c.sessionID
	}

	return c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.cfg.BaseURL,
		Headers: headers,
		Body:    req,
	})
}

// loginURL derives the login endpoint from the base endpoint by
// stripping the streaming-path suffix.
func (c *Client) loginURL() string {
	return strings.TrimSuffix(c.cfg.BaseURL, streamSuffix) + loginPath
}
