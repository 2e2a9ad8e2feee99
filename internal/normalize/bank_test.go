package normalize

import (
	"testing"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

func TestBankTransactions(t *testing.T) {
	payload := map[string]any{
		"bankTransactions": []any{
			map[string]any{
				"bank": "Epifi Bank",
				"txns": []any{
					[]any{"5000", "SALARY CREDIT", "2024-02-01", float64(1), "NEFT", "25000"},
					[]any{"1200", "UPI PAYMENT", "2024-02-03", float64(2), "UPI", "23800"},
					[]any{"10", "INT CREDIT", "2024-02-05", float64(4), "", "23810"},
				},
			},
		},
	}

	rec := BankTransactions(payload)
	if len(rec.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(rec.Transactions))
	}
	if rec.Transactions[0].Type != models.BankTxnCredit || rec.Transactions[0].Amount != 5000 {
		t.Fatalf("unexpected first txn %+v", rec.Transactions[0])
	}
	if rec.Transactions[2].Type != models.BankTxnInterest {
		t.Fatalf("type code 4 must map to INTEREST, got %v", rec.Transactions[2].Type)
	}
	if len(rec.Banks) != 1 {
		t.Fatalf("expected 1 bank, got %d", len(rec.Banks))
	}
	agg := rec.Banks[0]
	if agg.TotalCredits != 5000 {
		t.Fatalf("interest must not count as credit, got %v", agg.TotalCredits)
	}
	if agg.TotalDebits != 1200 {
		t.Fatalf("unexpected debits %v", agg.TotalDebits)
	}
	if agg.CurrentBalance != 25000 {
		t.Fatalf("current balance must be the maximum observed, got %v", agg.CurrentBalance)
	}
}

func TestBankTxnTypeTable(t *testing.T) {
	want := map[int]models.BankTxnType{
		1: models.BankTxnCredit,
		2: models.BankTxnDebit,
		3: models.BankTxnOpening,
		4: models.BankTxnInterest,
		5: models.BankTxnTDS,
		6: models.BankTxnInstallment,
		7: models.BankTxnClosing,
		8: models.BankTxnOthers,
	}
	for code, typ := range want {
		payload := map[string]any{
			"bankTransactions": []any{
				map[string]any{
					"bank": "B",
					"txns": []any{[]any{"1", "", "2024-01-01", float64(code), "", "1"}},
				},
			},
		}
		rec := BankTransactions(payload)
		if rec.Transactions[0].Type != typ {
			t.Errorf("code %d: expected %v, got %v", code, typ, rec.Transactions[0].Type)
		}
	}
}

func TestBankTxnTypeUnknown(t *testing.T) {
	payload := map[string]any{
		"bankTransactions": []any{
			map[string]any{
				"bank": "B",
				"txns": []any{[]any{"1", "", "2024-01-01", float64(42), "", "1"}},
			},
		},
	}
	rec := BankTransactions(payload)
	if rec.Transactions[0].Type != models.BankTxnUnknown {
		t.Fatalf("unmapped code must yield UNKNOWN, got %v", rec.Transactions[0].Type)
	}
}

func TestAggregateBanksFirstSeenOrder(t *testing.T) {
	txns := []models.BankTransaction{
		{Bank: "B", Type: models.BankTxnCredit, Amount: 10, Balance: 10},
		{Bank: "A", Type: models.BankTxnDebit, Amount: 5, Balance: 5},
		{Bank: "B", Type: models.BankTxnDebit, Amount: 3, Balance: 7},
	}
	aggs := AggregateBanks(txns)
	if len(aggs) != 2 || aggs[0].Bank != "B" || aggs[1].Bank != "A" {
		t.Fatalf("expected first-seen order, got %+v", aggs)
	}
	if aggs[0].TotalCredits != 10 || aggs[0].TotalDebits != 3 || aggs[0].CurrentBalance != 10 {
		t.Fatalf("unexpected fold %+v", aggs[0])
	}
}

func TestAggregateBanksOverdrawnBalances(t *testing.T) {
	txns := []models.BankTransaction{
		{Bank: "OD", Type: models.BankTxnDebit, Amount: 500, Balance: -500},
		{Bank: "OD", Type: models.BankTxnCredit, Amount: 300, Balance: -200},
	}
	aggs := AggregateBanks(txns)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 bank, got %d", len(aggs))
	}
	if aggs[0].CurrentBalance != -200 {
		t.Fatalf("overdrawn account must report its maximum observed balance, got %v", aggs[0].CurrentBalance)
	}
}

func TestBankTransactionsEmpty(t *testing.T) {
	rec := BankTransactions(map[string]any{})
	if rec.Reason == "" {
		t.Fatalf("expected reason on empty payload")
	}
	if len(rec.Transactions) != 0 || len(rec.Banks) != 0 {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}
