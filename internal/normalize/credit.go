package normalize

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// Credit normalizes the raw credit report payload.
//
// Only the first report is read when the bureau returns several; the
// remote gives no ordering guarantee, so this mirrors the upstream
// behavior rather than assuming most-recent-first.
func Credit(payload map[string]any) *models.CreditRecord {
	report := mapAt(payload, "$.creditReports[0].creditReportData")
	if report == nil {
		return &models.CreditRecord{
			Accounts: []models.CreditAccount{},
			Reason:   "no credit report available",
		}
	}

	var score *int
	if v, ok := lookup(report, "$.score.bureauScore"); ok {
		score = coerceInt(v)
	}

	accounts := []models.CreditAccount{}
	for _, raw := range listAt(report, "$.creditAccount.creditAccountDetails") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		accounts = append(accounts, models.CreditAccount{
			ID:             coerceString(entry["accountNumber"]),
			Subscriber:     coerceString(entry["subscriberName"]),
			AccountType:    coerceString(entry["accountType"]),
			CreditLimit:    coerceFloat(entry["creditLimitAmount"], 0),
			CurrentBalance: coerceFloat(entry["currentBalance"], 0),
			PaymentRating:  coerceString(entry["paymentRating"]),
			AccountStatus:  coerceString(entry["accountStatus"]),
			OpenDate:       coerceString(entry["openDate"]),
		})
	}

	return &models.CreditRecord{
		Score:              score,
		Accounts:           accounts,
		TotalAccounts:      int(numAt(report, "$.creditAccount.creditAccountSummary.account.creditAccountTotal", 0)),
		ActiveAccounts:     int(numAt(report, "$.creditAccount.creditAccountSummary.account.creditAccountActive", 0)),
		OutstandingBalance: numAt(report, "$.creditAccount.creditAccountSummary.totalOutstandingBalance.outstandingBalanceAll", 0),
	}
}
