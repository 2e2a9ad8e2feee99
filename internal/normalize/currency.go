package normalize

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a payload omits the currency code.
const DefaultCurrency = "INR"

var nanosPerUnit = decimal.NewFromInt(1_000_000_000)

// DecodeAmount converts a {units, nanos} currency object into its
// numeric value: units + nanos/1e9. Either field may be absent and
// counts as 0; a non-map input decodes to 0. The arithmetic is done in
// decimals so large unit strings survive intact.
func DecodeAmount(v any) float64 {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	units := coerceDecimal(m["units"])
	nanos := coerceDecimal(m["nanos"])
	return units.Add(nanos.Div(nanosPerUnit)).InexactFloat64()
}

// FormatAmount renders a value as a locale-aware currency string.
// An empty code falls back to DefaultCurrency.
func FormatAmount(value float64, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	return money.NewFromFloat(value, currencyCode).Display()
}

// PercentageChange returns the relative change in percent. It is
// defined as exactly 0 when previous is 0; that avoids a division by
// zero, it is not a claim that nothing changed.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func coerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	}
	return decimal.Zero
}
