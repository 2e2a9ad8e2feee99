package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	domrepo "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/fimcp"
	pkgcache "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/cache"
	xlogger "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
)

type fakeSession struct {
	mu          sync.Mutex
	initCalls   int
	authCalls   int
	toolCalls   map[string]int
	callOrder   []string
	inFlight    int
	maxInFlight int
	authed      bool
	payloads    map[string]map[string]any
	failTools   map[string]error
	failAuth    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		toolCalls: map[string]int{},
		payloads:  map[string]map[string]any{},
		failTools: map[string]error{},
	}
}

func (f *fakeSession) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return nil
}

func (f *fakeSession) Authenticate(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.failAuth != nil {
		return f.failAuth
	}
	f.authed = true
	return nil
}

func (f *fakeSession) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authed
}

func (f *fakeSession) CallTool(_ context.Context, name string, _ map[string]any) (*fimcp.ToolResult, error) {
	f.mu.Lock()
	f.toolCalls[name]++
	f.callOrder = append(f.callOrder, name)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	err, failed := f.failTools[name]
	payload := f.payloads[name]
	f.mu.Unlock()

	// Yield so overlapping callers would be observed in flight.
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if failed {
		return nil, err
	}
	return &fimcp.ToolResult{Structured: payload}, nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	calls    map[string]int
	errors   map[string]int
	degrades int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{calls: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordToolCall(tool, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[tool+":"+outcome]++
}
func (m *fakeMetrics) RecordToolLatency(string, float64) {}
func (m *fakeMetrics) RecordParseDegrade(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degrades++
}
func (m *fakeMetrics) RecordSnapshotPublished(string) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

type capturePublisher struct {
	mu    sync.Mutex
	snaps []*models.Snapshot
}

func (p *capturePublisher) Publish(_ context.Context, s *models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, s)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func netWorthPayload() map[string]any {
	return map[string]any{
		"netWorthResponse": map[string]any{
			"totalNetWorthValue": map[string]any{"units": "1500000", "currencyCode": "INR"},
		},
	}
}

func newTestService(t *testing.T, sess *fakeSession, pub *capturePublisher) (*FinancialDataService, *fakeMetrics) {
	t.Helper()
	m := newFakeMetrics()
	var publisher domrepo.Publisher
	if pub != nil {
		publisher = pub
	}
	svc := NewFinancialDataService(
		func() ToolSession { return sess },
		pkgcache.NewMemoryCache(),
		publisher,
		m,
		testLogger(t),
		time.Minute,
	)
	return svc, m
}

func TestNetWorthCachesResult(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	svc, _ := newTestService(t, sess, nil)

	first, err := svc.NetWorth(context.Background(), "9999999999", false)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.TotalValue != 1500000 {
		t.Fatalf("unexpected total %v", first.TotalValue)
	}

	second, err := svc.NetWorth(context.Background(), "9999999999", false)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if second.TotalValue != first.TotalValue {
		t.Fatalf("cached record differs: %v vs %v", second.TotalValue, first.TotalValue)
	}
	if got := sess.toolCalls[fimcp.ToolNetWorth]; got != 1 {
		t.Fatalf("expected 1 remote call, got %d", got)
	}
}

func TestFreshBypassesCache(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	svc, _ := newTestService(t, sess, nil)

	if _, err := svc.NetWorth(context.Background(), "9999999999", false); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := svc.NetWorth(context.Background(), "9999999999", true); err != nil {
		t.Fatalf("fresh fetch: %v", err)
	}
	if got := sess.toolCalls[fimcp.ToolNetWorth]; got != 2 {
		t.Fatalf("expected 2 remote calls, got %d", got)
	}
}

func TestSessionEstablishedOnce(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	sess.payloads[fimcp.ToolCreditReport] = map[string]any{}
	svc, _ := newTestService(t, sess, nil)

	if _, err := svc.NetWorth(context.Background(), "9999999999", false); err != nil {
		t.Fatalf("networth: %v", err)
	}
	if _, err := svc.Credit(context.Background(), "9999999999", false); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if sess.initCalls != 1 || sess.authCalls != 1 {
		t.Fatalf("expected one handshake, got init=%d auth=%d", sess.initCalls, sess.authCalls)
	}
}

func TestAuthenticationFailurePropagates(t *testing.T) {
	sess := newFakeSession()
	sess.failAuth = &fimcp.AuthenticationError{Status: 403}
	svc, m := newTestService(t, sess, nil)

	_, err := svc.NetWorth(context.Background(), "9999999999", false)
	var authErr *fimcp.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if m.errors["authenticate"] != 1 {
		t.Fatalf("expected authenticate error recorded, got %v", m.errors)
	}
}

func TestOverviewCollectsPartialFailures(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	sess.payloads[fimcp.ToolCreditReport] = map[string]any{}
	sess.payloads[fimcp.ToolEPFDetails] = map[string]any{}
	sess.payloads[fimcp.ToolMFTransactions] = map[string]any{}
	sess.failTools[fimcp.ToolBankTransactions] = &fimcp.ToolCallError{Tool: fimcp.ToolBankTransactions, Message: "upstream down"}
	svc, _ := newTestService(t, sess, nil)

	res, err := svc.Overview(context.Background(), "9999999999", false)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if res.NetWorth == nil || res.NetWorth.TotalValue != 1500000 {
		t.Fatalf("unexpected net worth %+v", res.NetWorth)
	}
	if res.Banks != nil {
		t.Fatalf("expected banks absent on failure")
	}
	if _, ok := res.Errors[string(models.DatasetBankTransactions)]; !ok {
		t.Fatalf("expected bank failure listed, got %v", res.Errors)
	}
}

func TestOverviewSerializesToolCalls(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	sess.payloads[fimcp.ToolCreditReport] = map[string]any{}
	sess.payloads[fimcp.ToolEPFDetails] = map[string]any{}
	sess.payloads[fimcp.ToolMFTransactions] = map[string]any{}
	sess.payloads[fimcp.ToolBankTransactions] = map[string]any{}
	svc, _ := newTestService(t, sess, nil)

	if _, err := svc.Overview(context.Background(), "9999999999", true); err != nil {
		t.Fatalf("overview: %v", err)
	}
	if sess.maxInFlight != 1 {
		t.Fatalf("tool calls must not overlap on one session, saw %d in flight", sess.maxInFlight)
	}
	wantOrder := []string{
		fimcp.ToolNetWorth,
		fimcp.ToolCreditReport,
		fimcp.ToolEPFDetails,
		fimcp.ToolMFTransactions,
		fimcp.ToolBankTransactions,
	}
	if len(sess.callOrder) != len(wantOrder) {
		t.Fatalf("expected %d tool calls, got %v", len(wantOrder), sess.callOrder)
	}
	for i, tool := range wantOrder {
		if sess.callOrder[i] != tool {
			t.Fatalf("expected %s at position %d, got %v", tool, i, sess.callOrder)
		}
	}
}

func TestSnapshotsPublished(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = netWorthPayload()
	pub := &capturePublisher{}
	svc, _ := newTestService(t, sess, pub)

	if _, err := svc.NetWorth(context.Background(), "9999999999", false); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pub.snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(pub.snaps))
	}
	snap := pub.snaps[0]
	if snap.Dataset != models.DatasetNetWorth || snap.Identity != "9999999999" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.EventID == "" {
		t.Fatalf("expected event id")
	}
}

func TestParseDegradeRecorded(t *testing.T) {
	sess := newFakeSession()
	sess.payloads[fimcp.ToolNetWorth] = nil // raw-only result
	svc, m := newTestService(t, sess, nil)

	rec, err := svc.NetWorth(context.Background(), "9999999999", false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rec.Reason == "" {
		t.Fatalf("expected reasoned empty record")
	}
	if m.degrades != 1 {
		t.Fatalf("expected degrade recorded, got %d", m.degrades)
	}
}
