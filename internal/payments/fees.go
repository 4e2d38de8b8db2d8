package payments

import "github.com/shopspring/decimal"

// MinChargeCents - минимальная сумма, которую принимает провайдер
const MinChargeCents int64 = 50

// ComputeAmountCents считает стоимость сессии в минорных единицах:
// ставка за час * длительность, округление вверх, но не меньше минимума.
func ComputeAmountCents(hourlyRate decimal.Decimal, durationMinutes int) int64 {
	cents := hourlyRate.
		Mul(decimal.NewFromInt(int64(durationMinutes) * 100)).
		Div(decimal.NewFromInt(60)).
		Ceil().
		IntPart()

	if cents < MinChargeCents {
		return MinChargeCents
	}
	return cents
}

// ClampFeePercent приводит процент комиссии к диапазону [0, 100]
func ClampFeePercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// PlatformFeeCents считает комиссию платформы в центах.
// Округление half-up в целочисленной арифметике, без float.
func PlatformFeeCents(amountCents int64, percent int) int64 {
	p := int64(ClampFeePercent(percent))
	return (amountCents*p + 50) / 100
}

// CoachPayoutCents - сумма перевода коучу после удержания комиссии
func CoachPayoutCents(amountCents int64, feePercent int) int64 {
	return amountCents - PlatformFeeCents(amountCents, feePercent)
}
