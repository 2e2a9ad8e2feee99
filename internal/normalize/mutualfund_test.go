package normalize

import (
	"testing"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

func TestFundTransactions(t *testing.T) {
	payload := map[string]any{
		"transactions": []any{
			map[string]any{
				"isin":       "INF123A01ZZ9",
				"folioId":    "55501234",
				"schemeName": "Epifi Flexi Cap Fund",
				"txns": []any{
					[]any{float64(1), "2024-01-10", float64(18.5), float64(1000), float64(100)},
					[]any{float64(2), "2024-03-05", float64(20.0), float64(500), float64(40)},
				},
			},
		},
	}

	rec := FundTransactions(payload)
	if len(rec.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(rec.Transactions))
	}
	buy := rec.Transactions[0]
	if buy.Type != models.FundOrderBuy || buy.Date != "2024-01-10" || buy.NAV != 18.5 {
		t.Fatalf("unexpected buy %+v", buy)
	}
	if rec.Transactions[1].Type != models.FundOrderSell {
		t.Fatalf("order type 2 must map to SELL, got %v", rec.Transactions[1].Type)
	}
	if len(rec.Schemes) != 1 {
		t.Fatalf("expected 1 scheme, got %d", len(rec.Schemes))
	}
	agg := rec.Schemes[0]
	if agg.TotalInvested != 60 {
		t.Fatalf("expected invested 60, got %v", agg.TotalInvested)
	}
	if agg.TotalUnits != 500 {
		t.Fatalf("expected units 500, got %v", agg.TotalUnits)
	}
}

func TestAggregateFundSchemesFirstSeenOrder(t *testing.T) {
	txns := []models.FundTransaction{
		{ISIN: "B", Type: models.FundOrderBuy, Amount: 10, Units: 1},
		{ISIN: "A", Type: models.FundOrderBuy, Amount: 20, Units: 2},
		{ISIN: "B", Type: models.FundOrderBuy, Amount: 30, Units: 3},
	}
	aggs := AggregateFundSchemes(txns)
	if len(aggs) != 2 {
		t.Fatalf("expected 2 schemes, got %d", len(aggs))
	}
	if aggs[0].ISIN != "B" || aggs[1].ISIN != "A" {
		t.Fatalf("expected first-seen order, got %s,%s", aggs[0].ISIN, aggs[1].ISIN)
	}
	if aggs[0].TotalInvested != 40 || aggs[0].TotalUnits != 4 {
		t.Fatalf("unexpected fold %+v", aggs[0])
	}
}

func TestAggregateFundSchemesUnclamped(t *testing.T) {
	txns := []models.FundTransaction{
		{ISIN: "A", Type: models.FundOrderBuy, Amount: 100, Units: 10},
		{ISIN: "A", Type: models.FundOrderSell, Amount: 150, Units: 12},
	}
	aggs := AggregateFundSchemes(txns)
	if aggs[0].TotalInvested != -50 {
		t.Fatalf("totals must not be clamped, got %v", aggs[0].TotalInvested)
	}
	if aggs[0].TotalUnits != -2 {
		t.Fatalf("totals must not be clamped, got %v", aggs[0].TotalUnits)
	}
}

func TestFundTransactionsEmpty(t *testing.T) {
	rec := FundTransactions(map[string]any{})
	if rec.Reason == "" {
		t.Fatalf("expected reason on empty payload")
	}
	if len(rec.Transactions) != 0 || len(rec.Schemes) != 0 {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestFundTransactionsSkipsShortTuples(t *testing.T) {
	payload := map[string]any{
		"transactions": []any{
			map[string]any{
				"isin": "INF123A01ZZ9",
				"txns": []any{
					[]any{float64(1), "2024-01-10"},
					[]any{float64(1), "2024-01-11", float64(10), float64(1), float64(10)},
				},
			},
		},
	}
	rec := FundTransactions(payload)
	if len(rec.Transactions) != 1 {
		t.Fatalf("expected short tuple skipped, got %d", len(rec.Transactions))
	}
}
