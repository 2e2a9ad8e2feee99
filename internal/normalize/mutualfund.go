package normalize

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// Positions within a raw mutual fund transaction tuple.
const (
	mfTupleOrderType = 0
	mfTupleDate      = 1
	mfTupleNAV       = 2
	mfTupleUnits     = 3
	mfTupleAmount    = 4
	mfTupleLen       = 5
)

// FundTransactions flattens the per-scheme transaction lists into a
// single tagged list and folds per-scheme aggregates over it.
func FundTransactions(payload map[string]any) *models.FundTransactionsRecord {
	schemes := listAt(payload, "$.transactions")
	if len(schemes) == 0 {
		return &models.FundTransactionsRecord{
			Transactions: []models.FundTransaction{},
			Schemes:      []models.FundSchemeAggregate{},
			Reason:       "no mutual fund transactions available",
		}
	}

	var flat []models.FundTransaction
	for _, raw := range schemes {
		scheme, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		isin := coerceString(scheme["isin"])
		folio := coerceString(scheme["folioId"])
		name := coerceString(scheme["schemeName"])
		for _, t := range listAt(scheme, "$.txns") {
			tuple, ok := t.([]any)
			if !ok || len(tuple) < mfTupleLen {
				continue
			}
			orderType := models.FundOrderSell
			if coerceFloat(tuple[mfTupleOrderType], 0) == 1 {
				orderType = models.FundOrderBuy
			}
			flat = append(flat, models.FundTransaction{
				ISIN:       isin,
				FolioID:    folio,
				Type:       orderType,
				Date:       coerceString(tuple[mfTupleDate]),
				NAV:        coerceFloat(tuple[mfTupleNAV], 0),
				Units:      coerceFloat(tuple[mfTupleUnits], 0),
				Amount:     coerceFloat(tuple[mfTupleAmount], 0),
				SchemeName: name,
			})
		}
	}

	return &models.FundTransactionsRecord{
		Transactions: flat,
		Schemes:      AggregateFundSchemes(flat),
	}
}

// AggregateFundSchemes folds transactions per ISIN in first-seen order.
// BUY adds to the invested amount and units, SELL subtracts; totals are
// deliberately unclamped.
func AggregateFundSchemes(txns []models.FundTransaction) []models.FundSchemeAggregate {
	index := map[string]int{}
	aggregates := []models.FundSchemeAggregate{}
	for _, txn := range txns {
		i, seen := index[txn.ISIN]
		if !seen {
			i = len(aggregates)
			index[txn.ISIN] = i
			aggregates = append(aggregates, models.FundSchemeAggregate{
				ISIN:         txn.ISIN,
				SchemeName:   txn.SchemeName,
				Transactions: []models.FundTransaction{},
			})
		}
		agg := &aggregates[i]
		agg.Transactions = append(agg.Transactions, txn)
		switch txn.Type {
		case models.FundOrderBuy:
			agg.TotalInvested += txn.Amount
			agg.TotalUnits += txn.Units
		case models.FundOrderSell:
			agg.TotalInvested -= txn.Amount
			agg.TotalUnits -= txn.Units
		}
	}
	return aggregates
}
