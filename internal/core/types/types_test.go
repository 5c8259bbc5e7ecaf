package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundMoney_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"10", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, RoundMoney(MustMoney(tt.in)).Equal(MustMoney(tt.want)))
		})
	}
}

func TestDivRate(t *testing.T) {
	got := DivRate(decimal.NewFromInt(1000), decimal.NewFromInt(3))
	assert.Equal(t, "333.333333", got.String())

	got = DivRate(decimal.NewFromInt(2), decimal.NewFromInt(3))
	assert.Equal(t, "0.666667", got.String())
}

func TestParsePeriod(t *testing.T) {
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-01", "2025-01-15", " 2025-01-31 "} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	for _, in := range []string{"", "2025-13", "Jan 2025", "2025/01"} {
		_, err := ParsePeriod(in)
		assert.Error(t, err, in)
	}
}

func TestMonthEnd(t *testing.T) {
	assert.Equal(t, "2024-02-29", FormatDate(MonthEnd(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "2025-12-31", FormatDate(MonthEnd(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "2025-03", FormatPeriod(MonthStart(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))))
}

func TestOrZero(t *testing.T) {
	assert.True(t, OrZero(decimal.NullDecimal{}).IsZero())
	assert.True(t, OrZero(Nullable(MustMoney("12.5"))).Equal(MustMoney("12.5")))
	assert.True(t, Sum(MustMoney("1.10"), MustMoney("2.20")).Equal(MustMoney("3.3")))
}
