package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	domrepo "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/repository"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/fimcp"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/normalize"
	pkgcache "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/cache"
	xlogger "github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/logger"
)

// ToolSession is the protocol surface the service depends on.
type ToolSession interface {
	Initialize(ctx context.Context) error
	Authenticate(ctx context.Context, identity string) error
	Authenticated() bool
	CallTool(ctx context.Context, name string, args map[string]any) (*fimcp.ToolResult, error)
}

// SessionFactory builds a fresh, uninitialized protocol session.
// The service keeps one session per identity because the remote binds
// authentication to the session id.
type SessionFactory func() ToolSession

// FinancialDataService fetches datasets through the protocol client,
// normalizes them, caches the results and emits snapshots downstream.
type FinancialDataService struct {
	newSession SessionFactory
	cache      pkgcache.Service
	publisher  domrepo.Publisher
	metrics    domrepo.Metrics
	logger     *xlogger.Logger
	ttl        time.Duration

	mu       sync.Mutex
	sessions map[string]ToolSession
}

func NewFinancialDataService(
	newSession SessionFactory,
	cache pkgcache.Service,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
	ttl time.Duration,
) *FinancialDataService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FinancialDataService{
		newSession: newSession,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		ttl:        ttl,
		sessions:   map[string]ToolSession{},
	}
}

// NetWorth returns the normalized net worth dataset for an identity.
func (s *FinancialDataService) NetWorth(ctx context.Context, identity string, fresh bool) (*models.NetWorthRecord, error) {
	var rec models.NetWorthRecord
	key := s.cacheKey(identity, models.DatasetNetWorth)
	if !fresh && s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	payload, err := s.call(ctx, identity, fimcp.ToolNetWorth)
	if err != nil {
		return nil, err
	}
	out := normalize.NetWorth(payload)
	s.cacheSet(ctx, key, out)
	s.publish(ctx, models.DatasetNetWorth, identity, out)
	return out, nil
}

// Credit returns the normalized credit report for an identity.
func (s *FinancialDataService) Credit(ctx context.Context, identity string, fresh bool) (*models.CreditRecord, error) {
	var rec models.CreditRecord
	key := s.cacheKey(identity, models.DatasetCreditReport)
	if !fresh && s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	payload, err := s.call(ctx, identity, fimcp.ToolCreditReport)
	if err != nil {
		return nil, err
	}
	out := normalize.Credit(payload)
	s.cacheSet(ctx, key, out)
	s.publish(ctx, models.DatasetCreditReport, identity, out)
	return out, nil
}

// RetirementFund returns the normalized EPF dataset for an identity.
func (s *FinancialDataService) RetirementFund(ctx context.Context, identity string, fresh bool) (*models.RetirementFundRecord, error) {
	var rec models.RetirementFundRecord
	key := s.cacheKey(identity, models.DatasetRetirementFund)
	if !fresh && s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	payload, err := s.call(ctx, identity, fimcp.ToolEPFDetails)
	if err != nil {
		return nil, err
	}
	out := normalize.RetirementFund(payload)
	s.cacheSet(ctx, key, out)
	s.publish(ctx, models.DatasetRetirementFund, identity, out)
	return out, nil
}

// FundTransactions returns the normalized mutual fund dataset for an identity.
func (s *FinancialDataService) FundTransactions(ctx context.Context, identity string, fresh bool) (*models.FundTransactionsRecord, error) {
	var rec models.FundTransactionsRecord
	key := s.cacheKey(identity, models.DatasetFundTransactions)
	if !fresh && s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	payload, err := s.call(ctx, identity, fimcp.ToolMFTransactions)
	if err != nil {
		return nil, err
	}
	out := normalize.FundTransactions(payload)
	s.cacheSet(ctx, key, out)
	s.publish(ctx, models.DatasetFundTransactions, identity, out)
	return out, nil
}

// BankTransactions returns the normalized bank dataset for an identity.
func (s *FinancialDataService) BankTransactions(ctx context.Context, identity string, fresh bool) (*models.BankTransactionsRecord, error) {
	var rec models.BankTransactionsRecord
	key := s.cacheKey(identity, models.DatasetBankTransactions)
	if !fresh && s.cacheGet(ctx, key, &rec) {
		return &rec, nil
	}
	payload, err := s.call(ctx, identity, fimcp.ToolBankTransactions)
	if err != nil {
		return nil, err
	}
	out := normalize.BankTransactions(payload)
	s.cacheSet(ctx, key, out)
	s.publish(ctx, models.DatasetBankTransactions, identity, out)
	return out, nil
}

// Overview fetches every dataset in order on the identity's single
// session; the remote does not tolerate overlapping tool calls on one
// session id. A dataset that fails lands in Errors instead of failing
// the whole call; Overview itself only errors when the session cannot
// be established at all.
func (s *FinancialDataService) Overview(ctx context.Context, identity string, fresh bool) (*models.OverviewRecord, error) {
	if _, err := s.session(ctx, identity); err != nil {
		return nil, err
	}

	res := &models.OverviewRecord{
		Identity:  identity,
		Timestamp: time.Now().UTC(),
		Errors:    map[string]string{},
	}

	fetches := []struct {
		dataset models.Dataset
		fetch   func() error
	}{
		{models.DatasetNetWorth, func() (err error) {
			res.NetWorth, err = s.NetWorth(ctx, identity, fresh)
			return
		}},
		{models.DatasetCreditReport, func() (err error) {
			res.Credit, err = s.Credit(ctx, identity, fresh)
			return
		}},
		{models.DatasetRetirementFund, func() (err error) {
			res.Retirement, err = s.RetirementFund(ctx, identity, fresh)
			return
		}},
		{models.DatasetFundTransactions, func() (err error) {
			res.Funds, err = s.FundTransactions(ctx, identity, fresh)
			return
		}},
		{models.DatasetBankTransactions, func() (err error) {
			res.Banks, err = s.BankTransactions(ctx, identity, fresh)
			return
		}},
	}
	for _, f := range fetches {
		if err := f.fetch(); err != nil {
			res.Errors[string(f.dataset)] = err.Error()
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// RefreshAll re-fetches every dataset for an identity, bypassing the
// cache. Used by the background refresh queue.
func (s *FinancialDataService) RefreshAll(ctx context.Context, identity string) error {
	res, err := s.Overview(ctx, identity, true)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("refresh incomplete: %d dataset(s) failed", len(res.Errors))
	}
	return nil
}

// session returns an authenticated session for an identity, creating
// and logging one in on first use. A session that fails to establish
// is discarded so the next call starts clean.
func (s *FinancialDataService) session(ctx context.Context, identity string) (ToolSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[identity]
	if ok && sess.Authenticated() {
		return sess, nil
	}
	if !ok {
		sess = s.newSession()
		s.sessions[identity] = sess
	}
	if err := sess.Initialize(ctx); err != nil {
		delete(s.sessions, identity)
		s.metrics.RecordError("session_init")
		return nil, err
	}
	if err := sess.Authenticate(ctx, identity); err != nil {
		delete(s.sessions, identity)
		s.metrics.RecordError("authenticate")
		return nil, err
	}
	return sess, nil
}

func (s *FinancialDataService) call(ctx context.Context, identity, tool string) (map[string]any, error) {
	sess, err := s.session(ctx, identity)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := sess.CallTool(ctx, tool, nil)
	s.metrics.RecordToolLatency(tool, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordToolCall(tool, "error")
		s.metrics.RecordError("tool_call")
		return nil, err
	}
	s.metrics.RecordToolCall(tool, "success")
	if !res.IsStructured() {
		s.metrics.RecordParseDegrade(tool)
		s.logger.Warn("tool payload not structured, normalizing empty",
			xlogger.String("tool", tool))
	}
	return res.Structured, nil
}

func (s *FinancialDataService) publish(ctx context.Context, dataset models.Dataset, identity string, record any) {
	if s.publisher == nil {
		return
	}
	snap := &models.Snapshot{
		EventID:   uuid.NewString(),
		Dataset:   dataset,
		Identity:  identity,
		FetchedAt: time.Now().UTC(),
		Record:    record,
	}
	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.metrics.RecordError("publish")
		s.logger.Error("snapshot publish failed",
			xlogger.String("dataset", string(dataset)), xlogger.Error(err))
		return
	}
	s.metrics.RecordSnapshotPublished(string(dataset))
}

func (s *FinancialDataService) cacheKey(identity string, dataset models.Dataset) string {
	return pkgcache.Key("dataset", identity, string(dataset))
}

// cacheGet treats any cache failure as a miss; the remote fetch is the
// fallback either way.
func (s *FinancialDataService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest) == nil
}

func (s *FinancialDataService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache set failed", xlogger.String("key", key), xlogger.Error(err))
	}
}
