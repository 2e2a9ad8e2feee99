package normalize

import "testing"

func TestNetWorth(t *testing.T) {
	payload := map[string]any{
		"netWorthResponse": map[string]any{
			"totalNetWorthValue": map[string]any{
				"units":        "1500000",
				"currencyCode": "INR",
			},
			"assetValues": []any{
				map[string]any{
					"netWorthAttribute": "ASSET_TYPE_MUTUAL_FUND",
					"value":             map[string]any{"units": "1000000"},
				},
				map[string]any{
					"type":  "ASSET_TYPE_SAVINGS_ACCOUNTS",
					"value": map[string]any{"units": "500000"},
				},
			},
		},
	}

	rec := NetWorth(payload)
	if rec.TotalValue != 1500000 {
		t.Fatalf("unexpected total %v", rec.TotalValue)
	}
	if rec.Currency != "INR" {
		t.Fatalf("unexpected currency %q", rec.Currency)
	}
	if len(rec.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(rec.Assets))
	}
	if rec.Assets[0].Type != "ASSET_TYPE_MUTUAL_FUND" || rec.Assets[0].Value != 1000000 {
		t.Fatalf("unexpected first asset %+v", rec.Assets[0])
	}
	if rec.Assets[1].Type != "ASSET_TYPE_SAVINGS_ACCOUNTS" || rec.Assets[1].Value != 500000 {
		t.Fatalf("unexpected second asset %+v", rec.Assets[1])
	}
	if rec.Reason != "" {
		t.Fatalf("unexpected reason %q", rec.Reason)
	}
	if rec.FormattedTotalValue == "" {
		t.Fatalf("expected formatted total")
	}
}

func TestNetWorthMissingContainer(t *testing.T) {
	rec := NetWorth(map[string]any{})
	if rec.Reason == "" {
		t.Fatalf("expected reason on empty payload")
	}
	if rec.TotalValue != 0 || len(rec.Assets) != 0 {
		t.Fatalf("expected zeroed record, got %+v", rec)
	}
	if rec.Currency != DefaultCurrency {
		t.Fatalf("unexpected currency %q", rec.Currency)
	}
}

func TestNetWorthPassThrough(t *testing.T) {
	payload := map[string]any{
		"netWorthResponse":  map[string]any{"totalNetWorthValue": map[string]any{"units": "1"}},
		"mfSchemeAnalytics": map[string]any{"schemeAnalytics": []any{}},
	}
	rec := NetWorth(payload)
	if rec.MutualFundAnalytics == nil {
		t.Fatalf("expected analytics pass-through")
	}
	if rec.AccountDetails != nil {
		t.Fatalf("expected nil account details")
	}
}
