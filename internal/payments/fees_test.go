package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeAmountCents(t *testing.T) {
	cases := []struct {
		name     string
		rate     string
		minutes  int
		expected int64
	}{
		{"full hour", "75.00", 60, 7500},
		{"half hour", "75.00", 30, 3750},
		{"ninety minutes", "100.00", 90, 15000},
		{"fractional cents round up", "33.33", 45, 2500}, // 33.33 * 45/60 = 24.9975
		{"below minimum clamped", "0.25", 60, 50},
		{"tiny slot clamped", "1.00", 15, 50},
		{"exactly minimum", "0.50", 60, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rate := decimal.RequireFromString(tc.rate)
			assert.Equal(t, tc.expected, ComputeAmountCents(rate, tc.minutes))
		})
	}
}

func TestClampFeePercent(t *testing.T) {
	assert.Equal(t, 0, ClampFeePercent(-5))
	assert.Equal(t, 0, ClampFeePercent(0))
	assert.Equal(t, 10, ClampFeePercent(10))
	assert.Equal(t, 100, ClampFeePercent(100))
	assert.Equal(t, 100, ClampFeePercent(150))
}

func TestPlatformFeeCents(t *testing.T) {
	// Округление half-up
	assert.Equal(t, int64(750), PlatformFeeCents(7500, 10))
	assert.Equal(t, int64(11), PlatformFeeCents(105, 10))  // 10.5 -> 11
	assert.Equal(t, int64(10), PlatformFeeCents(104, 10))  // 10.4 -> 10
	assert.Equal(t, int64(0), PlatformFeeCents(7500, 0))
	assert.Equal(t, int64(7500), PlatformFeeCents(7500, 100))
	// Процент за пределами диапазона зажимается
	assert.Equal(t, int64(0), PlatformFeeCents(7500, -20))
	assert.Equal(t, int64(7500), PlatformFeeCents(7500, 150))
}

func TestCoachPayoutCents(t *testing.T) {
	assert.Equal(t, int64(6750), CoachPayoutCents(7500, 10))
	assert.Equal(t, int64(7500), CoachPayoutCents(7500, 0))
	assert.Equal(t, int64(0), CoachPayoutCents(7500, 100))
	// Сумма брони минимальная, комиссия съедает 5 центов
	assert.Equal(t, int64(45), CoachPayoutCents(50, 10))
}
