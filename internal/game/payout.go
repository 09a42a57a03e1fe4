package game

import "github.com/shopspring/decimal"

// Payout returns floor(amount × multiplier) computed exactly.
// Binary floats would turn 100 × 1.15 into 114.99…; decimals do not.
func Payout(amount int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(multiplier).Floor().IntPart()
}

// PityChance is min(ceiling, base + streak × perLoss).
func PityChance(streak int, base, perLoss, ceiling float64) float64 {
	chance := base + float64(streak)*perLoss
	if chance > ceiling {
		return ceiling
	}
	return chance
}
