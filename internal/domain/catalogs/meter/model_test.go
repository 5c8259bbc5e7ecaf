package meter

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

func TestMeter_Validate(t *testing.T) {
	shopID := id.New()

	m := NewMeter(shopID, domain.UtilityElectric, " EM-1 ")
	m.Multiplier = decimal.Zero
	require.NoError(t, m.Validate(context.Background()))
	assert.Equal(t, "EM-1", m.Serial)
	assert.True(t, m.Multiplier.Equal(decimal.NewFromInt(1)))

	bad := NewMeter(shopID, "STEAM", "X")
	assert.Error(t, bad.Validate(context.Background()))

	neg := NewMeter(shopID, domain.UtilityWater, "W-1")
	neg.Multiplier = decimal.NewFromInt(-2)
	assert.Error(t, neg.Validate(context.Background()))
}

func TestBillingMeter(t *testing.T) {
	shopID := id.New()
	first := NewMeter(shopID, domain.UtilityElectric, "E-1")
	water := NewMeter(shopID, domain.UtilityWater, "W-1")
	second := NewMeter(shopID, domain.UtilityElectric, "E-2")
	inactive := NewMeter(shopID, domain.UtilityElectric, "E-0")
	inactive.Active = false
	inactive.ID = id.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("lowest id wins regardless of order", func(t *testing.T) {
		got := BillingMeter([]*Meter{second, water, first})
		require.NotNil(t, got)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("inactive and non-electric meters are ignored", func(t *testing.T) {
		got := BillingMeter([]*Meter{inactive, water, second})
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("none", func(t *testing.T) {
		assert.Nil(t, BillingMeter([]*Meter{water, inactive}))
		assert.Nil(t, BillingMeter(nil))
	})
}
