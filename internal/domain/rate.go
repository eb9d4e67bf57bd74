package domain

import "github.com/shopspring/decimal"

// SuccessRate returns correct/total rounded to two decimal places.
func SuccessRate(correct, total int) (decimal.Decimal, error) {
	if total <= 0 {
		return decimal.Zero, Validationf("success rate needs at least one question, got %d", total)
	}
	if correct < 0 || correct > total {
		return decimal.Zero, Validationf("success rate out of range: %d of %d", correct, total)
	}
	rate := decimal.NewFromInt(int64(correct)).DivRound(decimal.NewFromInt(int64(total)), 2)
	if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, Validationf("success rate %s outside [0, 1]", rate)
	}
	return rate, nil
}
