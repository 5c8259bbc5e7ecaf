package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
)

var jan2025 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newShop(code, area string, active bool) *shop.Shop {
	s := shop.NewShop(id.New(), code)
	if area != "" {
		s.AreaSqft = decimal.NewNullDecimal(d(area))
	}
	s.Active = active
	return s
}

func TestEligibleShops(t *testing.T) {
	a := newShop("A", "100", true)
	b := newShop("B", "200", false)
	c := newShop("C", "", true)
	shops := []*shop.Shop{a, b, c}

	active := EligibleShops(shops, AreaActiveOnly)
	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].Code)
	assert.Equal(t, "C", active[1].Code)

	assert.Len(t, EligibleShops(shops, AreaAll), 3)
	assert.Empty(t, EligibleShops(nil, AreaAll))
}

func TestTotalBillableArea(t *testing.T) {
	shops := []*shop.Shop{newShop("A", "100.5", true), newShop("B", "", true), newShop("C", "899.5", true)}

	assert.Equal(t, "1000", TotalBillableArea(shops, decimal.NullDecimal{}).String())
	assert.Equal(t, "1234", TotalBillableArea(shops, decimal.NewNullDecimal(d("1234"))).String())
	assert.True(t, TotalBillableArea(nil, decimal.NullDecimal{}).IsZero())
}

func marketCost() *monthlycost.MonthlyCost {
	c := monthlycost.NewMonthlyCost(id.New(), jan2025)
	c.TotalAcUnits = d("5000")
	c.AcUnitPrice = d("10")
	c.GuardCost = d("6000")
	c.MaidCost = d("3000")
	c.OtherCost = d("1000")
	c.GeneratorEnabled = false
	return c
}

func electricTariff(rate string) *tariff.Tariff {
	return tariff.NewTariff(domain.UtilityElectric, d(rate), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestDeriveMarketRates(t *testing.T) {
	shops := []*shop.Shop{newShop("A", "1000", true), newShop("B", "9000", true)}

	t.Run("pools spread over summed area", func(t *testing.T) {
		rates, err := DeriveMarketRates(marketCost(), shops, electricTariff("15.20"))
		require.NoError(t, err)

		assert.Equal(t, "10000", rates.TotalArea.String())
		assert.Equal(t, "15.2", rates.ElectricityRate.String())
		require.Len(t, rates.Area, 2)
		assert.Equal(t, domain.ChargeAC, rates.Area[0].Type)
		assert.Equal(t, "5.000000", rates.Area[0].Rate.StringFixed(6))
		assert.Equal(t, domain.ChargeService, rates.Area[1].Type)
		assert.Equal(t, "1.000000", rates.Area[1].Rate.StringFixed(6))
		assert.Equal(t, map[domain.ChargeType]string{domain.ChargeAC: "5", domain.ChargeService: "1"}, rates.RateMap())
	})

	t.Run("overrides and optional categories", func(t *testing.T) {
		c := marketCost()
		c.AreaOverride = decimal.NewNullDecimal(d("20000"))
		c.ServiceRateOverride = decimal.NewNullDecimal(d("0.75"))
		c.SpecialEnabled = true
		c.SpecialCost = d("2000")
		c.SpecialName = "Festival levy"

		rates, err := DeriveMarketRates(c, shops, electricTariff("10"))
		require.NoError(t, err)

		require.Len(t, rates.Area, 3)
		assert.Equal(t, "2.5", rates.Area[0].Rate.String())
		assert.Equal(t, "0.75", rates.Area[1].Rate.String())
		assert.True(t, rates.Area[1].Overridden)
		assert.Equal(t, domain.ChargeSpecial, rates.Area[2].Type)
		assert.Equal(t, "Festival levy", rates.Area[2].Description)
		assert.Equal(t, "0.1", rates.Area[2].Rate.String())
	})

	t.Run("zero area", func(t *testing.T) {
		_, err := DeriveMarketRates(marketCost(), []*shop.Shop{newShop("A", "", true)}, electricTariff("10"))
		assert.ErrorIs(t, err, ErrNonPositiveArea)
	})
}

func TestComputeShopCharge_ElectricityRounding(t *testing.T) {
	s := newShop("E1", "0", true)
	rd := reading.NewReading(id.New(), jan2025, d("0"), d("120.5"))

	charge := ComputeShopCharge(s, rd, MarketRates{ElectricityRate: d("15.20"), TotalArea: d("1")})

	assert.Equal(t, "1831.60", charge.Electricity.StringFixed(2))
	require.Len(t, charge.Lines, 1)
	line := charge.Lines[0]
	assert.Equal(t, "kWh", line.Unit)
	assert.Equal(t, "Electricity consumption", line.Description)
	assert.Equal(t, "120.5", line.Quantity.String())
	assert.True(t, charge.Total.Equal(charge.Electricity))
}

func TestComputeShopCharge_SumOfRoundedParts(t *testing.T) {
	shops := []*shop.Shop{newShop("A", "333.33", true), newShop("B", "666.67", true)}
	c := marketCost()
	c.TotalAcUnits = d("1")
	c.AcUnitPrice = d("1000.01")
	c.GuardCost = d("777.77")
	c.MaidCost, c.OtherCost = decimal.Zero, decimal.Zero

	rates, err := DeriveMarketRates(c, shops, electricTariff("7.77"))
	require.NoError(t, err)

	rd := reading.NewReading(id.New(), jan2025, d("10"), d("43.3"))
	charge := ComputeShopCharge(shops[0], rd, rates)

	require.Len(t, charge.Lines, 3)
	sum := decimal.Zero
	for _, l := range charge.Lines {
		assert.True(t, l.Amount.Equal(l.Amount.Round(2)), "line %s is rounded", l.Type)
		sum = sum.Add(l.Amount)
	}
	assert.True(t, charge.Total.Equal(sum))
	assert.True(t, charge.Total.Equal(charge.Electricity.Add(charge.Area[domain.ChargeAC]).Add(charge.Area[domain.ChargeService])))
	assert.Equal(t, "sqft", charge.Lines[1].Unit)
	assert.True(t, charge.Lines[1].Quantity.Equal(d("333.33")))
}

func TestComputeShopCharge_NullAreaChargesNothingForArea(t *testing.T) {
	shops := []*shop.Shop{newShop("A", "1000", true), newShop("B", "", true)}
	rates, err := DeriveMarketRates(marketCost(), shops, electricTariff("10"))
	require.NoError(t, err)

	rd := reading.NewReading(id.New(), jan2025, d("0"), d("10"))
	charge := ComputeShopCharge(shops[1], rd, rates)

	assert.True(t, charge.Area[domain.ChargeAC].IsZero())
	assert.True(t, charge.Area[domain.ChargeService].IsZero())
	assert.Equal(t, "100.00", charge.Total.StringFixed(2))
}
