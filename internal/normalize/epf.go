package normalize

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// RetirementFund normalizes the raw EPF payload. The employee share
// comes from the account-level aggregate; the employer share is the sum
// of every establishment's employer-share balance (a record without one
// contributes 0).
func RetirementFund(payload map[string]any) *models.RetirementFundRecord {
	account := mapAt(payload, "$.uanAccounts[0].rawDetails")
	if account == nil {
		return &models.RetirementFundRecord{
			EmployerDetails: []models.EmployerShare{},
			Reason:          "no retirement fund data available",
		}
	}

	details := []models.EmployerShare{}
	var employerShare float64
	for _, raw := range listAt(account, "$.est_details") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		balance := numAt(entry, "$.pf_balance.employer_share.balance", 0)
		employerShare += balance
		details = append(details, models.EmployerShare{
			Establishment: coerceString(entry["est_name"]),
			Balance:       balance,
		})
	}

	return &models.RetirementFundRecord{
		TotalBalance:    numAt(account, "$.overall_pf_balance.current_pf_balance", 0),
		EmployeeShare:   numAt(account, "$.overall_pf_balance.employee_share_total.balance", 0),
		EmployerShare:   employerShare,
		PensionBalance:  numAt(account, "$.overall_pf_balance.pension_balance", 0),
		EmployerDetails: details,
	}
}
