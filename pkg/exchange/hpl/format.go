package hpl

import "github.com/shopspring/decimal"

// ref: https://hyperliquid.gitbook.io/hyperliquid-docs/for-developers/api/tick-and-lot-size
const maxPriceSigFigs = 5

var (
	one        = decimal.New(1, 0)
	intPriceAt = decimal.New(100_000, 0) // prices above this are quoted integral
)

// formatPrice renders a price per Hyperliquid tick rules: integral above
// 100k, otherwise rounded to 5 significant figures.
func formatPrice(px decimal.Decimal) string {
	if px.GreaterThan(intPriceAt) {
		return px.Round(0).String()
	}
	return roundSigFigs(px, maxPriceSigFigs).String()
}

// formatSize renders an order size quantized to the market's szDecimals.
func formatSize(sz decimal.Decimal, szDecimals int) string {
	return sz.Round(int32(szDecimals)).String()
}

func roundSigFigs(d decimal.Decimal, figs int32) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	return d.Round(figs - decimalExponent(d.Abs()))
}

// decimalExponent returns the number of digits before the decimal point for
// values >= 1, and zero or a negative count of leading fractional zeros
// otherwise (0.9 -> 0, 0.0012 -> -2).
func decimalExponent(abs decimal.Decimal) int32 {
	if abs.GreaterThanOrEqual(one) {
		return int32(len(abs.Truncate(0).BigInt().String()))
	}
	exp := int32(1)
	for abs.LessThan(one) {
		abs = abs.Shift(1)
		exp--
	}
	return exp
}
