package normalize

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// Positions within a raw bank transaction tuple.
const (
	bankTupleAmount    = 0
	bankTupleNarration = 1
	bankTupleDate      = 2
	bankTupleType      = 3
	bankTupleMode      = 4
	bankTupleBalance   = 5
	bankTupleLen       = 6
)

var bankTxnTypes = map[int]models.BankTxnType{
	1: models.BankTxnCredit,
	2: models.BankTxnDebit,
	3: models.BankTxnOpening,
	4: models.BankTxnInterest,
	5: models.BankTxnTDS,
	6: models.BankTxnInstallment,
	7: models.BankTxnClosing,
	8: models.BankTxnOthers,
}

// BankTransactions flattens the per-bank transaction lists into a
// tagged list and folds per-bank aggregates over it.
func BankTransactions(payload map[string]any) *models.BankTransactionsRecord {
	banks := listAt(payload, "$.bankTransactions")
	if len(banks) == 0 {
		return &models.BankTransactionsRecord{
			Transactions: []models.BankTransaction{},
			Banks:        []models.BankAggregate{},
			Reason:       "no bank transactions available",
		}
	}

	var flat []models.BankTransaction
	for _, raw := range banks {
		bank, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := coerceString(bank["bank"])
		for _, t := range listAt(bank, "$.txns") {
			tuple, ok := t.([]any)
			if !ok || len(tuple) < bankTupleLen {
				continue
			}
			txnType, known := bankTxnTypes[int(coerceFloat(tuple[bankTupleType], 0))]
			if !known {
				txnType = models.BankTxnUnknown
			}
			flat = append(flat, models.BankTransaction{
				Bank:      name,
				Amount:    coerceFloat(tuple[bankTupleAmount], 0),
				Narration: coerceString(tuple[bankTupleNarration]),
				Date:      coerceString(tuple[bankTupleDate]),
				Type:      txnType,
				Mode:      coerceString(tuple[bankTupleMode]),
				Balance:   coerceFloat(tuple[bankTupleBalance], 0),
			})
		}
	}

	return &models.BankTransactionsRecord{
		Transactions: flat,
		Banks:        AggregateBanks(flat),
	}
}

// AggregateBanks folds transactions per bank in first-seen order.
// CREDIT amounts accumulate into TotalCredits and DEBIT amounts into
// TotalDebits; every other type leaves the totals alone.
// CurrentBalance is the maximum balance observed across the bank's
// transactions, seeded from the first one so an all-negative history
// (overdraft) is reported as-is.
func AggregateBanks(txns []models.BankTransaction) []models.BankAggregate {
	index := map[string]int{}
	aggregates := []models.BankAggregate{}
	for _, txn := range txns {
		i, seen := index[txn.Bank]
		if !seen {
			i = len(aggregates)
			index[txn.Bank] = i
			aggregates = append(aggregates, models.BankAggregate{
				Bank:           txn.Bank,
				CurrentBalance: txn.Balance,
				Transactions:   []models.BankTransaction{},
			})
		}
		agg := &aggregates[i]
		agg.Transactions = append(agg.Transactions, txn)
		switch txn.Type {
		case models.BankTxnCredit:
			agg.TotalCredits += txn.Amount
		case models.BankTxnDebit:
			agg.TotalDebits += txn.Amount
		}
		if txn.Balance > agg.CurrentBalance {
			agg.CurrentBalance = txn.Balance
		}
	}
	return aggregates
}
