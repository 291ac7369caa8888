// Package money holds the currency rounding rules for the ledger. Every
// currency value persisted by the ledger passes through Round2; raw
// unrounded floats never reach storage.
package money

import "github.com/shopspring/decimal"

// Round2 rounds to the nearest cent, half away from zero, on the scaled
// integer rather than the raw float.
func Round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// PercentOf returns ratePercent% of amount, rounded to cents.
func PercentOf(amount, ratePercent float64) float64 {
	d := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(ratePercent)).
		Div(decimal.NewFromInt(100))
	f, _ := d.Round(2).Float64()
	return f
}

// SplitCommission divides a total commission between the platform treasury
// and the creator. The platform fee is rounded independently; the creator
// share is the remainder, so the two always sum to the total exactly.
func SplitCommission(totalCommission, platformSplitPercent float64) (platformFee, creatorPay float64) {
	total := decimal.NewFromFloat(totalCommission).Round(2)
	fee := total.
		Mul(decimal.NewFromFloat(platformSplitPercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	platformFee, _ = fee.Float64()
	creatorPay, _ = total.Sub(fee).Float64()
	return platformFee, creatorPay
}
