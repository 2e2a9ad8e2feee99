package normalize

import "testing"

func TestRetirementFund(t *testing.T) {
	payload := map[string]any{
		"uanAccounts": []any{
			map[string]any{
				"rawDetails": map[string]any{
					"est_details": []any{
						map[string]any{
							"est_name": "ACME INDIA PVT LTD",
							"pf_balance": map[string]any{
								"employer_share": map[string]any{"balance": "50000"},
							},
						},
						map[string]any{
							"est_name": "GLOBEX CORP",
							"pf_balance": map[string]any{
								"employer_share": map[string]any{"balance": "30000"},
							},
						},
						map[string]any{
							"est_name":   "NO SHARE LLP",
							"pf_balance": map[string]any{},
						},
					},
					"overall_pf_balance": map[string]any{
						"current_pf_balance":   "180000",
						"pension_balance":      "20000",
						"employee_share_total": map[string]any{"balance": "100000"},
					},
				},
			},
		},
	}

	rec := RetirementFund(payload)
	if rec.TotalBalance != 180000 {
		t.Fatalf("unexpected total %v", rec.TotalBalance)
	}
	if rec.EmployeeShare != 100000 {
		t.Fatalf("unexpected employee share %v", rec.EmployeeShare)
	}
	if rec.EmployerShare != 80000 {
		t.Fatalf("unexpected employer share %v", rec.EmployerShare)
	}
	if rec.PensionBalance != 20000 {
		t.Fatalf("unexpected pension %v", rec.PensionBalance)
	}
	if len(rec.EmployerDetails) != 3 {
		t.Fatalf("expected 3 establishments, got %d", len(rec.EmployerDetails))
	}
	if rec.EmployerDetails[2].Balance != 0 {
		t.Fatalf("establishment without a share must contribute 0, got %v", rec.EmployerDetails[2].Balance)
	}
}

func TestRetirementFundEmployerShareIsSumOfDetails(t *testing.T) {
	entries := []any{}
	const n, each = 5, 1234.5
	for i := 0; i < n; i++ {
		entries = append(entries, map[string]any{
			"est_name": "EST",
			"pf_balance": map[string]any{
				"employer_share": map[string]any{"balance": each},
			},
		})
	}
	payload := map[string]any{
		"uanAccounts": []any{
			map[string]any{"rawDetails": map[string]any{"est_details": entries}},
		},
	}

	rec := RetirementFund(payload)
	var sum float64
	for _, d := range rec.EmployerDetails {
		sum += d.Balance
	}
	if rec.EmployerShare != sum || rec.EmployerShare != n*each {
		t.Fatalf("employer share %v, sum of details %v", rec.EmployerShare, sum)
	}
}

func TestRetirementFundMissingAccount(t *testing.T) {
	rec := RetirementFund(map[string]any{})
	if rec.Reason == "" {
		t.Fatalf("expected reason on empty payload")
	}
	if rec.TotalBalance != 0 || len(rec.EmployerDetails) != 0 {
		t.Fatalf("expected zeroed record, got %+v", rec)
	}
}
