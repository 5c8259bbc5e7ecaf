package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
)

// --- Markets ---

// MarketRepo implements market.Repository.
type MarketRepo struct {
	*table[market.Market]
}

var _ market.Repository = (*MarketRepo)(nil)

// Markets returns the market repository.
func (s *Store) Markets() *MarketRepo {
	return &MarketRepo{&table[market.Market]{
		store:  s,
		name:   "markets",
		rows:   func(st *state) map[id.ID]*market.Market { return st.markets },
		idOf:   func(m *market.Market) id.ID { return m.ID },
		search: func(m *market.Market) string { return m.Name + " " + m.Address },
		active: func(m *market.Market) bool { return m.Active },
		fields: map[string]func(*market.Market) any{
			"active": func(m *market.Market) any { return m.Active },
		},
	}}
}

// --- Shops ---

// ShopRepo implements shop.Repository.
type ShopRepo struct {
	*table[shop.Shop]
}

var _ shop.Repository = (*ShopRepo)(nil)

// Shops returns the shop repository.
func (s *Store) Shops() *ShopRepo {
	return &ShopRepo{&table[shop.Shop]{
		store:  s,
		name:   "shops",
		rows:   func(st *state) map[id.ID]*shop.Shop { return st.shops },
		idOf:   func(sh *shop.Shop) id.ID { return sh.ID },
		search: func(sh *shop.Shop) string { return sh.Code + " " + sh.Name + " " + sh.OwnerName },
		active: func(sh *shop.Shop) bool { return sh.Active },
		fields: map[string]func(*shop.Shop) any{
			"market_id": func(sh *shop.Shop) any { return sh.MarketID },
			"floor":     func(sh *shop.Shop) any { return sh.Floor },
			"active":    func(sh *shop.Shop) any { return sh.Active },
		},
		unique: func(st *state, sh *shop.Shop) error {
			for _, other := range st.shops {
				if other.ID != sh.ID && other.Code == sh.Code {
					return apperror.NewDuplicate("shop", "code", sh.Code)
				}
			}
			return nil
		},
	}}
}

// ListByMarket returns the market's shops ordered by id.
func (r *ShopRepo) ListByMarket(ctx context.Context, marketID id.ID, onlyActive bool) ([]*shop.Shop, error) {
	return r.find(func(sh *shop.Shop) bool {
		return sh.MarketID == marketID && (!onlyActive || sh.Active)
	}), nil
}

// --- Meters ---

// MeterRepo implements meter.Repository.
type MeterRepo struct {
	*table[meter.Meter]
}

var _ meter.Repository = (*MeterRepo)(nil)

// Meters returns the meter repository.
func (s *Store) Meters() *MeterRepo {
	return &MeterRepo{&table[meter.Meter]{
		store:  s,
		name:   "meters",
		rows:   func(st *state) map[id.ID]*meter.Meter { return st.meters },
		idOf:   func(m *meter.Meter) id.ID { return m.ID },
		search: func(m *meter.Meter) string { return m.Serial },
		active: func(m *meter.Meter) bool { return m.Active },
		fields: map[string]func(*meter.Meter) any{
			"shop_id":      func(m *meter.Meter) any { return m.ShopID },
			"utility_type": func(m *meter.Meter) any { return m.UtilityType },
			"active":       func(m *meter.Meter) any { return m.Active },
		},
		unique: func(st *state, m *meter.Meter) error {
			for _, other := range st.meters {
				if other.ID != m.ID && other.ShopID == m.ShopID &&
					other.UtilityType == m.UtilityType && other.Serial == m.Serial {
					return apperror.NewDuplicate("meter", "serial", m.Serial)
				}
			}
			return nil
		},
	}}
}

// ListByShop returns the meters of one shop ordered by id.
func (r *MeterRepo) ListByShop(ctx context.Context, shopID id.ID) ([]*meter.Meter, error) {
	return r.find(func(m *meter.Meter) bool { return m.ShopID == shopID }), nil
}

// ListByShops returns the meters of several shops ordered by id.
func (r *MeterRepo) ListByShops(ctx context.Context, shopIDs []id.ID) ([]*meter.Meter, error) {
	return r.find(func(m *meter.Meter) bool { return containsID(shopIDs, m.ShopID) }), nil
}

// Multiplier implements reading.MeterMultiplier.
func (r *MeterRepo) Multiplier(ctx context.Context, meterID id.ID) (decimal.Decimal, error) {
	m, err := r.GetByID(ctx, meterID)
	if err != nil {
		return decimal.Zero, apperror.NewNotFound("meter", meterID.String())
	}
	return m.Multiplier, nil
}

// --- Tariffs ---

// TariffRepo implements tariff.Repository.
type TariffRepo struct {
	*table[tariff.Tariff]
}

var _ tariff.Repository = (*TariffRepo)(nil)

// Tariffs returns the tariff repository.
func (s *Store) Tariffs() *TariffRepo {
	return &TariffRepo{&table[tariff.Tariff]{
		store: s,
		name:  "tariffs",
		rows:  func(st *state) map[id.ID]*tariff.Tariff { return st.tariffs },
		idOf:  func(t *tariff.Tariff) id.ID { return t.ID },
		fields: map[string]func(*tariff.Tariff) any{
			"utility_type": func(t *tariff.Tariff) any { return t.UtilityType },
		},
		unique: func(st *state, t *tariff.Tariff) error {
			for _, other := range st.tariffs {
				if other.ID != t.ID && other.UtilityType == t.UtilityType && other.EffectiveFrom.Equal(t.EffectiveFrom) {
					return apperror.NewDuplicate("tariff", "effectiveFrom", types.FormatDate(t.EffectiveFrom))
				}
			}
			return nil
		},
	}}
}

// ListByUtility returns the tariffs of one utility, newest effectiveFrom first.
func (r *TariffRepo) ListByUtility(ctx context.Context, utility domain.UtilityType) ([]*tariff.Tariff, error) {
	rows := r.find(func(t *tariff.Tariff) bool { return t.UtilityType == utility })
	sortDesc(rows, func(t *tariff.Tariff) time.Time { return t.EffectiveFrom })
	return rows, nil
}

// --- Readings ---

// ReadingRepo implements reading.Repository.
type ReadingRepo struct {
	*table[reading.Reading]
}

var _ reading.Repository = (*ReadingRepo)(nil)

// Readings returns the reading repository.
func (s *Store) Readings() *ReadingRepo {
	return &ReadingRepo{&table[reading.Reading]{
		store: s,
		name:  "readings",
		rows:  func(st *state) map[id.ID]*reading.Reading { return st.readings },
		idOf:  func(r *reading.Reading) id.ID { return r.ID },
		fields: map[string]func(*reading.Reading) any{
			"meter_id": func(r *reading.Reading) any { return r.MeterID },
			"period":   func(r *reading.Reading) any { return r.Period },
		},
		unique: func(st *state, r *reading.Reading) error {
			for _, other := range st.readings {
				if other.ID != r.ID && other.MeterID == r.MeterID && other.Period.Equal(r.Period) {
					return apperror.NewDuplicate("reading", "period", types.FormatPeriod(r.Period))
				}
			}
			return nil
		},
	}}
}

// GetByMeterAndPeriod returns the reading of a meter for one period.
func (r *ReadingRepo) GetByMeterAndPeriod(ctx context.Context, meterID id.ID, period time.Time) (*reading.Reading, error) {
	return r.first(func(rd *reading.Reading) bool {
		return rd.MeterID == meterID && rd.Period.Equal(period)
	}, types.FormatPeriod(period))
}

// ListByPeriod returns the readings of the given meters for one period.
func (r *ReadingRepo) ListByPeriod(ctx context.Context, period time.Time, meterIDs []id.ID) ([]*reading.Reading, error) {
	return r.find(func(rd *reading.Reading) bool {
		return rd.Period.Equal(period) && containsID(meterIDs, rd.MeterID)
	}), nil
}

// --- Monthly costs ---

// MonthlyCostRepo implements monthlycost.Repository.
type MonthlyCostRepo struct {
	*table[monthlycost.MonthlyCost]
}

var _ monthlycost.Repository = (*MonthlyCostRepo)(nil)

// MonthlyCosts returns the monthly cost repository.
func (s *Store) MonthlyCosts() *MonthlyCostRepo {
	return &MonthlyCostRepo{&table[monthlycost.MonthlyCost]{
		store: s,
		name:  "monthly_costs",
		rows:  func(st *state) map[id.ID]*monthlycost.MonthlyCost { return st.costs },
		idOf:  func(c *monthlycost.MonthlyCost) id.ID { return c.ID },
		fields: map[string]func(*monthlycost.MonthlyCost) any{
			"market_id": func(c *monthlycost.MonthlyCost) any { return c.MarketID },
			"period":    func(c *monthlycost.MonthlyCost) any { return c.Period },
			"locked":    func(c *monthlycost.MonthlyCost) any { return c.Locked },
		},
		unique: func(st *state, c *monthlycost.MonthlyCost) error {
			for _, other := range st.costs {
				if other.ID != c.ID && other.MarketID == c.MarketID && other.Period.Equal(c.Period) {
					return apperror.NewDuplicate("monthly cost", "period", c.PeriodLabel())
				}
			}
			return nil
		},
	}}
}

// GetByMarketAndPeriod returns the cost record of a market for one period.
func (r *MonthlyCostRepo) GetByMarketAndPeriod(ctx context.Context, marketID id.ID, period time.Time) (*monthlycost.MonthlyCost, error) {
	return r.first(func(c *monthlycost.MonthlyCost) bool {
		return c.MarketID == marketID && c.Period.Equal(period)
	}, types.FormatPeriod(period))
}

// SetLocked flips the lock flag.
func (r *MonthlyCostRepo) SetLocked(ctx context.Context, costID id.ID, locked bool) error {
	return r.mutate(costID, func(c *monthlycost.MonthlyCost) {
		c.Locked = locked
		c.Touch()
	})
}
