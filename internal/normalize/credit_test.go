package normalize

import "testing"

func creditPayload() map[string]any {
	return map[string]any{
		"creditReports": []any{
			map[string]any{
				"creditReportData": map[string]any{
					"score": map[string]any{"bureauScore": "746"},
					"creditAccount": map[string]any{
						"creditAccountDetails": []any{
							map[string]any{
								"accountNumber":     "XXXX1234",
								"subscriberName":    "Epifi Bank",
								"accountType":       "10",
								"creditLimitAmount": "200000",
								"currentBalance":    "75000",
								"paymentRating":     "0",
								"accountStatus":     "11",
								"openDate":          "2021-04-01",
							},
						},
						"creditAccountSummary": map[string]any{
							"account": map[string]any{
								"creditAccountTotal":  "4",
								"creditAccountActive": "3",
							},
							"totalOutstandingBalance": map[string]any{
								"outstandingBalanceAll": "175000",
							},
						},
					},
				},
			},
		},
	}
}

func TestCredit(t *testing.T) {
	rec := Credit(creditPayload())
	if rec.Score == nil || *rec.Score != 746 {
		t.Fatalf("unexpected score %v", rec.Score)
	}
	if len(rec.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(rec.Accounts))
	}
	acc := rec.Accounts[0]
	if acc.ID != "XXXX1234" || acc.Subscriber != "Epifi Bank" {
		t.Fatalf("unexpected account %+v", acc)
	}
	if acc.CreditLimit != 200000 || acc.CurrentBalance != 75000 {
		t.Fatalf("unexpected balances %+v", acc)
	}
	if rec.TotalAccounts != 4 || rec.ActiveAccounts != 3 {
		t.Fatalf("unexpected counters %+v", rec)
	}
	if rec.OutstandingBalance != 175000 {
		t.Fatalf("unexpected outstanding %v", rec.OutstandingBalance)
	}
}

func TestCreditMissingScore(t *testing.T) {
	payload := creditPayload()
	report := payload["creditReports"].([]any)[0].(map[string]any)["creditReportData"].(map[string]any)
	delete(report, "score")

	rec := Credit(payload)
	if rec.Score != nil {
		t.Fatalf("expected nil score, got %v", *rec.Score)
	}
	if rec.Reason != "" {
		t.Fatalf("a missing score is not missing data, got reason %q", rec.Reason)
	}
}

func TestCreditMissingReport(t *testing.T) {
	rec := Credit(map[string]any{})
	if rec.Reason == "" {
		t.Fatalf("expected reason on empty payload")
	}
	if rec.Score != nil || len(rec.Accounts) != 0 {
		t.Fatalf("expected zeroed record, got %+v", rec)
	}
}
