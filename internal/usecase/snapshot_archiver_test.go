package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

type captureStorage struct {
	fundTxns []models.FundTransaction
	bankTxns []models.BankTransaction
	identity string
}

func (s *captureStorage) StoreFundTransactions(_ context.Context, identity string, _ time.Time, txns []models.FundTransaction) error {
	s.identity = identity
	s.fundTxns = append(s.fundTxns, txns...)
	return nil
}

func (s *captureStorage) StoreBankTransactions(_ context.Context, identity string, _ time.Time, txns []models.BankTransaction) error {
	s.identity = identity
	s.bankTxns = append(s.bankTxns, txns...)
	return nil
}

func (s *captureStorage) Health(context.Context) error { return nil }
func (s *captureStorage) Close() error                 { return nil }

func snapshotBytes(t *testing.T, dataset models.Dataset, record any) []byte {
	t.Helper()
	b, err := json.Marshal(&models.Snapshot{
		EventID:   "evt-1",
		Dataset:   dataset,
		Identity:  "9999999999",
		FetchedAt: time.Now().UTC(),
		Record:    record,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestArchiverStoresFundTransactions(t *testing.T) {
	store := &captureStorage{}
	a := NewSnapshotArchiver("snapshots", store, newFakeMetrics())

	rec := &models.FundTransactionsRecord{
		Transactions: []models.FundTransaction{
			{ISIN: "INF123A01ZZ9", Type: models.FundOrderBuy, Amount: 100, Units: 10},
		},
	}
	if err := a.Handle(context.Background(), snapshotBytes(t, models.DatasetFundTransactions, rec)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.fundTxns) != 1 || store.fundTxns[0].ISIN != "INF123A01ZZ9" {
		t.Fatalf("unexpected stored txns %+v", store.fundTxns)
	}
	if store.identity != "9999999999" {
		t.Fatalf("unexpected identity %q", store.identity)
	}
}

func TestArchiverStoresBankTransactions(t *testing.T) {
	store := &captureStorage{}
	a := NewSnapshotArchiver("snapshots", store, newFakeMetrics())

	rec := &models.BankTransactionsRecord{
		Transactions: []models.BankTransaction{
			{Bank: "Epifi Bank", Type: models.BankTxnCredit, Amount: 5000, Balance: 25000},
		},
	}
	if err := a.Handle(context.Background(), snapshotBytes(t, models.DatasetBankTransactions, rec)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.bankTxns) != 1 || store.bankTxns[0].Bank != "Epifi Bank" {
		t.Fatalf("unexpected stored txns %+v", store.bankTxns)
	}
}

func TestArchiverSkipsNonTransactionalDatasets(t *testing.T) {
	store := &captureStorage{}
	a := NewSnapshotArchiver("snapshots", store, newFakeMetrics())

	rec := &models.NetWorthRecord{TotalValue: 1500000}
	if err := a.Handle(context.Background(), snapshotBytes(t, models.DatasetNetWorth, rec)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.fundTxns) != 0 || len(store.bankTxns) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestArchiverRejectsMalformedEvents(t *testing.T) {
	a := NewSnapshotArchiver("snapshots", &captureStorage{}, newFakeMetrics())
	if err := a.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected error on malformed event")
	}
}
