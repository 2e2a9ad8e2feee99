package fimcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/http"
)

// countingTransport fails every call and counts attempts.
type countingTransport struct {
	calls int
}

func (t *countingTransport) SendRequest(ctx context.Context, opts *xhttp.RequestOptions) (*http.Response, error) {
	t.calls++
	return nil, errors.New("transport should not be reached")
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		ProtocolVersion: "2024-11-05",
		ClientName:      "moneydoothas",
		ClientVersion:   "1.0.0",
	}
}

func newTestServer(t *testing.T, rpc func(w http.ResponseWriter, req rpcRequest), login http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/stream", func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			return
		}
		rpc(w, req)
	})
	if login != nil {
		mux.HandleFunc("/login", login)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCallToolBeforeInitialize(t *testing.T) {
	tr := &countingTransport{}
	c := New(testConfig("http://unused/mcp/stream"), WithTransport(tr))

	_, err := c.CallTool(context.Background(), ToolNetWorth, nil)

	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("expected zero transport calls, got %d", tr.calls)
	}
}

func TestAuthenticateBeforeInitialize(t *testing.T) {
	tr := &countingTransport{}
	c := New(testConfig("http://unused/mcp/stream"), WithTransport(tr))

	err := c.Authenticate(context.Background(), "9999999999")

	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("expected zero transport calls, got %d", tr.calls)
	}
}

func TestAuthenticateEmptyIdentity(t *testing.T) {
	tr := &countingTransport{}
	c := New(testConfig("http://unused/mcp/stream"), WithTransport(tr))
	c.sessionID = "sess-1"

	err := c.Authenticate(context.Background(), "")

	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("expected zero transport calls, got %d", tr.calls)
	}
}

func TestInitialize(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req rpcRequest) {
		if req.Method != "initialize" {
			t.Errorf("unexpected method %q", req.Method)
		}
		w.Header().Set("Mcp-Session-Id", "sess-42")
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{}`)})
	}, nil)

	c := New(testConfig(srv.URL + "/mcp/stream"))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if c.SessionID() != "sess-42" {
		t.Fatalf("unexpected session id %q", c.SessionID())
	}
}

func TestInitializeMissingSessionHeader(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req rpcRequest) {
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{}`)})
	}, nil)

	c := New(testConfig(srv.URL + "/mcp/stream"))
	err := c.Initialize(context.Background())

	var initErr *SessionInitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected SessionInitializationError, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	var gotSession, gotIdentity string
	srv := newTestServer(t, func(w http.ResponseWriter, req rpcRequest) {
		w.Header().Set("Mcp-Session-Id", "sess-7")
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{}`)})
	}, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		gotSession = r.PostFormValue("sessionId")
		gotIdentity = r.PostFormValue("phoneNumber")
		w.WriteHeader(http.StatusOK)
	})

	c := New(testConfig(srv.URL + "/mcp/stream"))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := c.Authenticate(context.Background(), "9999999999"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !c.Authenticated() {
		t.Fatalf("expected authenticated")
	}
	if gotSession != "sess-7" || gotIdentity != "9999999999" {
		t.Fatalf("unexpected login form: session=%q identity=%q", gotSession, gotIdentity)
	}
}

func TestAuthenticateRejected(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req rpcRequest) {
		w.Header().Set("Mcp-Session-Id", "sess-7")
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{}`)})
	}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	c := New(testConfig(srv.URL + "/mcp/stream"))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	err := c.Authenticate(context.Background(), "9999999999")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Status != http.StatusForbidden {
		t.Fatalf("unexpected status %d", authErr.Status)
	}
	if c.Authenticated() {
		t.Fatalf("should not be authenticated")
	}
}

func initializedClient(t *testing.T, rpc func(w http.ResponseWriter, req rpcRequest)) *Client {
	t.Helper()
	srv := newTestServer(t, func(w http.ResponseWriter, req rpcRequest) {
		if req.Method == "initialize" {
			w.Header().Set("Mcp-Session-Id", "sess-1")
			_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{}`)})
			return
		}
		rpc(w, req)
	}, nil)

	c := New(testConfig(srv.URL + "/mcp/stream"))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c
}

func TestCallToolStructured(t *testing.T) {
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		result := `{"content":[{"type":"text","text":"{\"netWorthResponse\":{\"totalNetWorthValue\":{\"units\":\"1500000\"}}}"}]}`
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(result)})
	})

	res, err := c.CallTool(context.Background(), ToolNetWorth, nil)
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsStructured() {
		t.Fatalf("expected structured result")
	}
	if _, ok := res.Structured["netWorthResponse"]; !ok {
		t.Fatalf("missing netWorthResponse in %v", res.Structured)
	}
}

func TestCallToolParseDegradesToRaw(t *testing.T) {
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		result := `{"content":[{"type":"text","text":"not json at all"}]}`
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(result)})
	})

	res, err := c.CallTool(context.Background(), ToolCreditReport, nil)
	if err != nil {
		t.Fatalf("expected degrade, not failure: %v", err)
	}
	if res.IsStructured() {
		t.Fatalf("expected raw result")
	}
	if len(res.Raw) == 0 {
		t.Fatalf("raw result is empty")
	}
}

func TestCallToolNonTextContent(t *testing.T) {
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		result := `{"content":[{"type":"image","text":""}]}`
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(result)})
	})

	res, err := c.CallTool(context.Background(), ToolNetWorth, nil)
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsStructured() {
		t.Fatalf("expected raw result for non-text content")
	}
}

func TestCallToolRemoteError(t *testing.T) {
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Error: &rpcError{Message: "login required"}})
	})

	_, err := c.CallTool(context.Background(), ToolBankTransactions, nil)
	var callErr *ToolCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected ToolCallError, got %v", err)
	}
	if callErr.Message != "login required" {
		t.Fatalf("unexpected message %q", callErr.Message)
	}
}

func TestCallToolCorrelationIDsIncrease(t *testing.T) {
	var ids []int64
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		ids = append(ids, req.ID)
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(`{"content":[]}`)})
	})

	for i := 0; i < 3; i++ {
		if _, err := c.CallTool(context.Background(), ToolNetWorth, nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not increasing: %v", ids)
		}
	}
}

func TestListTools(t *testing.T) {
	c := initializedClient(t, func(w http.ResponseWriter, req rpcRequest) {
		if req.Method != "tools/list" {
			t.Errorf("unexpected method %q", req.Method)
		}
		result := `{"tools":[{"name":"fetch_net_worth"},{"name":"fetch_credit_report"}]}`
		_ = json.NewEncoder(w).Encode(rpcResponse{JSONRPC: jsonrpcVersion, Result: json.RawMessage(result)})
	})

	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(tools) != 2 || tools[0].Name != ToolNetWorth {
		t.Fatalf("unexpected catalog %v", tools)
	}
}
