package finance

import "github.com/shopspring/decimal"

const CurrencySymbol = "₹"

// FormatCurrency renders d as "₹1234.50"
func FormatCurrency(d decimal.Decimal) string {
	return CurrencySymbol + d.StringFixed(2)
}
