package normalize

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
)

// NetWorth normalizes the raw net worth payload. It never fails:
// a payload without the top-level container yields a zeroed record
// carrying a reason string so callers can tell "no data" from a
// transport failure.
func NetWorth(payload map[string]any) *models.NetWorthRecord {
	container := mapAt(payload, "$.netWorthResponse")
	if container == nil {
		return &models.NetWorthRecord{
			Currency: DefaultCurrency,
			Assets:   []models.Asset{},
			Reason:   "no net worth data available",
		}
	}

	total := DecodeAmount(container["totalNetWorthValue"])
	currency := strAt(container, "$.totalNetWorthValue.currencyCode", DefaultCurrency)

	assets := []models.Asset{}
	for _, raw := range listAt(container, "$.assetValues") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		assetType := coerceString(entry["netWorthAttribute"])
		if assetType == "" {
			assetType = coerceString(entry["type"])
		}
		value := DecodeAmount(entry["value"])
		assets = append(assets, models.Asset{
			Type:           assetType,
			Value:          value,
			FormattedValue: FormatAmount(value, currency),
		})
	}

	// Ancillary analytics and account maps pass through unchanged.
	return &models.NetWorthRecord{
		TotalValue:          total,
		FormattedTotalValue: FormatAmount(total, currency),
		Currency:            currency,
		Assets:              assets,
		MutualFundAnalytics: mapAt(payload, "$.mfSchemeAnalytics"),
		AccountDetails:      mapAt(payload, "$.accountDetailsBulkResponse"),
	}
}
