package billing

import (
	"github.com/shopspring/decimal"

	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
)

// AreaRate is the per-area rate of one enabled category.
type AreaRate struct {
	Type        domain.ChargeType
	Description string
	Pool        decimal.Decimal
	Rate        decimal.Decimal
	Overridden  bool
}

// MarketRates are computed once per run and shared by all shops.
type MarketRates struct {
	Tariff          *tariff.Tariff
	ElectricityRate decimal.Decimal
	TotalArea       decimal.Decimal

	// Area holds enabled categories only, in invoice order.
	Area []AreaRate
}

// RateMap renders the area rates for invoice meta.
func (r MarketRates) RateMap() map[domain.ChargeType]string {
	out := make(map[domain.ChargeType]string, len(r.Area))
	for _, a := range r.Area {
		out[a.Type] = a.Rate.String()
	}
	return out
}

// DeriveMarketRates computes the electricity rate and the rate of every enabled
// area category. Total area is taken from the eligible shops unless overridden.
func DeriveMarketRates(cost *monthlycost.MonthlyCost, eligible []*shop.Shop, electric *tariff.Tariff) (MarketRates, error) {
	totalArea := TotalBillableArea(eligible, cost.AreaOverride)
	if !totalArea.IsPositive() {
		return MarketRates{}, ErrNonPositiveArea
	}

	rates := MarketRates{
		Tariff:          electric,
		ElectricityRate: electric.FlatRatePerUnit,
		TotalArea:       totalArea,
	}
	for _, pool := range cost.AreaPools() {
		if !pool.Enabled {
			continue
		}
		rate, err := DeriveAreaRate(pool.Amount, totalArea, pool.RateOverride)
		if err != nil {
			return MarketRates{}, err
		}
		rates.Area = append(rates.Area, AreaRate{
			Type:        pool.Type,
			Description: pool.Label,
			Pool:        pool.Amount,
			Rate:        rate,
			Overridden:  pool.RateOverride.Valid,
		})
	}
	return rates, nil
}

// ShopCharge is the computed bill of one shop.
type ShopCharge struct {
	Electricity decimal.Decimal
	Area        map[domain.ChargeType]decimal.Decimal
	Lines       []invoice.Line
	Total       decimal.Decimal
}

// ComputeShopCharge prices the reading and the shop area with the market rates.
// Every part is rounded to money scale first; Total is the sum of the rounded parts.
func ComputeShopCharge(s *shop.Shop, rd *reading.Reading, rates MarketRates) ShopCharge {
	charge := ShopCharge{Area: make(map[domain.ChargeType]decimal.Decimal, len(rates.Area))}

	consumption := rd.Consumption
	charge.Electricity = types.RoundMoney(consumption.Mul(rates.ElectricityRate))
	charge.Lines = append(charge.Lines, invoice.Line{
		Type:        domain.ChargeElectricity,
		Description: domain.ChargeElectricity.Description(),
		Quantity:    consumption,
		Unit:        domain.ChargeElectricity.Unit(),
		UnitPrice:   rates.ElectricityRate,
		Amount:      charge.Electricity,
	})

	area := s.Area()
	for _, r := range rates.Area {
		amount := types.RoundMoney(area.Mul(r.Rate))
		charge.Area[r.Type] = amount
		charge.Lines = append(charge.Lines, invoice.Line{
			Type:        r.Type,
			Description: r.Description,
			Quantity:    area,
			Unit:        r.Type.Unit(),
			UnitPrice:   r.Rate,
			Amount:      amount,
		})
	}

	total := decimal.Zero
	for _, l := range charge.Lines {
		total = total.Add(l.Amount)
	}
	charge.Total = total
	return charge
}
