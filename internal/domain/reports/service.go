package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/billing"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
)

const (
	defaultTableLimit = 50
	maxTableLimit     = 500
)

// Deps are the collaborators of Service.
type Deps struct {
	Repo     Repository
	Shops    shop.Repository
	Meters   meter.Repository
	Readings reading.Repository
	Tariffs  tariff.Repository
	Costs    monthlycost.Repository
	Invoices invoice.Repository

	// TxManager is optional; when set, summaries read from one snapshot.
	TxManager tx.ReadOnlyManager
}

// Service provides report generation operations.
type Service struct {
	deps     Deps
	policies billing.Config
}

// NewService creates a new reports service. Policies must match the billing service.
func NewService(deps Deps, policies billing.Config) *Service {
	if policies.AreaPolicy == "" {
		policies.AreaPolicy = billing.AreaActiveOnly
	}
	if policies.TariffPolicy == "" {
		policies.TariffPolicy = billing.TariffLatest
	}
	return &Service{deps: deps, policies: policies}
}

func parseScope(marketID id.ID, period string) (time.Time, error) {
	if id.IsNil(marketID) {
		return time.Time{}, apperror.NewValidation("marketId is required").WithDetail("field", "marketId")
	}
	p, err := types.ParsePeriod(period)
	if err != nil {
		return time.Time{}, apperror.NewValidation(err.Error()).WithDetail("field", "period")
	}
	return p, nil
}

// MarketSummary builds KPIs, the health panel and the inputs snapshot of a month.
func (s *Service) MarketSummary(ctx context.Context, marketID id.ID, period string) (*MarketSummary, error) {
	p, err := parseScope(marketID, period)
	if err != nil {
		return nil, err
	}

	var out *MarketSummary
	err = s.readOnly(ctx, func(ctx context.Context) error {
		out, err = s.marketSummary(ctx, marketID, p)
		return err
	})
	return out, err
}

func (s *Service) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.deps.TxManager == nil {
		return fn(ctx)
	}
	return s.deps.TxManager.ReadOnly(ctx, fn)
}

func (s *Service) marketSummary(ctx context.Context, marketID id.ID, p time.Time) (*MarketSummary, error) {
	kpis, err := s.deps.Repo.KPIs(ctx, marketID, p)
	if err != nil {
		return nil, fmt.Errorf("get kpis: %w", err)
	}

	shops, err := s.deps.Shops.ListByMarket(ctx, marketID, false)
	if err != nil {
		return nil, fmt.Errorf("load shops: %w", err)
	}

	cost, err := s.deps.Costs.GetByMarketAndPeriod(ctx, marketID, p)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("load monthly cost: %w", err)
	}
	if err != nil {
		cost = nil
	}

	electric, err := s.electricTariff(ctx, p)
	if err != nil {
		return nil, err
	}

	health, err := s.health(ctx, p, shops, cost != nil, electric != nil)
	if err != nil {
		return nil, err
	}

	return &MarketSummary{
		MarketID: marketID,
		Period:   types.FormatPeriod(p),
		KPIs:     kpis,
		Health:   health,
		Inputs:   s.inputs(cost, billing.EligibleShops(shops, s.policies.AreaPolicy), electric),
	}, nil
}

func (s *Service) electricTariff(ctx context.Context, period time.Time) (*tariff.Tariff, error) {
	tariffs, err := s.deps.Tariffs.ListByUtility(ctx, domain.UtilityElectric)
	if err != nil {
		return nil, fmt.Errorf("load tariffs: %w", err)
	}
	t, err := billing.SelectElectricTariff(tariffs, period, s.policies.TariffPolicy)
	if errors.Is(err, billing.ErrNoTariff) {
		return nil, nil
	}
	return t, err
}

func (s *Service) health(ctx context.Context, period time.Time, shops []*shop.Shop, hasInputs, hasTariff bool) (HealthPanel, error) {
	health := HealthPanel{InputsOk: hasInputs, TariffOk: hasTariff}

	eligible := billing.EligibleShops(shops, s.policies.AreaPolicy)
	shopIDs := idsOf(eligible)

	meters, err := s.deps.Meters.ListByShops(ctx, shopIDs)
	if err != nil {
		return health, fmt.Errorf("load meters: %w", err)
	}
	billingMeters := billingMeterIDs(meters)

	readings, err := s.deps.Readings.ListByPeriod(ctx, period, billingMeters)
	if err != nil {
		return health, fmt.Errorf("load readings: %w", err)
	}
	health.MissingReadingsCount = len(billingMeters) - len(readings)

	invoices, err := s.deps.Invoices.ListByPeriod(ctx, period, shopIDs)
	if err != nil {
		return health, fmt.Errorf("load invoices: %w", err)
	}
	for _, inv := range invoices {
		if !inv.Locked {
			health.UnlockedInvoicesCount++
		}
	}
	return health, nil
}

// inputs derives the rates a run would use. Rates are zero while the area is not positive.
func (s *Service) inputs(cost *monthlycost.MonthlyCost, eligible []*shop.Shop, electric *tariff.Tariff) InputsSnapshot {
	if cost == nil {
		return InputsSnapshot{}
	}

	snap := InputsSnapshot{
		AcTotalUnits:    cost.TotalAcUnits,
		AcUnitPrice:     cost.AcUnitPrice,
		GuardCost:       cost.GuardCost,
		MaidCost:        cost.MaidCost,
		OtherCost:       cost.OtherCost,
		GeneratorCost:   cost.GeneratorCost,
		SpecialCost:     cost.SpecialCost,
		MarketTotalSqft: billing.TotalBillableArea(eligible, cost.AreaOverride),
		Locked:          cost.Locked,
	}
	if electric != nil {
		snap.ElectricityRate = electric.FlatRatePerUnit
	}

	for _, pool := range cost.AreaPools() {
		rate, err := billing.DeriveAreaRate(pool.Amount, snap.MarketTotalSqft, pool.RateOverride)
		if err != nil {
			rate = decimal.Zero
		}
		snap.Rates = append(snap.Rates, PoolRate{
			Type:       pool.Type,
			Label:      pool.Label,
			Enabled:    pool.Enabled,
			Pool:       pool.Amount,
			Rate:       rate,
			Overridden: pool.RateOverride.Valid,
		})
	}
	return snap
}

// ReadingStatus lists every electricity billing meter of the market with its reading, if any.
// Rows are ordered by shop code.
func (s *Service) ReadingStatus(ctx context.Context, marketID id.ID, period string) ([]ReadingStatus, error) {
	p, err := parseScope(marketID, period)
	if err != nil {
		return nil, err
	}

	shops, err := s.deps.Shops.ListByMarket(ctx, marketID, false)
	if err != nil {
		return nil, fmt.Errorf("load shops: %w", err)
	}
	shopByID := make(map[id.ID]*shop.Shop, len(shops))
	for _, sh := range shops {
		shopByID[sh.ID] = sh
	}

	meters, err := s.deps.Meters.ListByShops(ctx, idsOf(shops))
	if err != nil {
		return nil, fmt.Errorf("load meters: %w", err)
	}
	var electric []*meter.Meter
	for _, m := range meters {
		if m.UtilityType == domain.UtilityElectric {
			electric = append(electric, m)
		}
	}

	meterIDs := make([]id.ID, 0, len(electric))
	for _, m := range electric {
		meterIDs = append(meterIDs, m.ID)
	}
	readings, err := s.deps.Readings.ListByPeriod(ctx, p, meterIDs)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	readingByMeter := make(map[id.ID]*reading.Reading, len(readings))
	for _, rd := range readings {
		if _, ok := readingByMeter[rd.MeterID]; !ok {
			readingByMeter[rd.MeterID] = rd
		}
	}

	rows := make([]ReadingStatus, 0, len(electric))
	for _, m := range electric {
		row := ReadingStatus{MeterID: m.ID, MeterSerial: m.Serial, ShopID: m.ShopID, Missing: true}
		if sh, ok := shopByID[m.ShopID]; ok {
			row.ShopCode = sh.Code
			row.ShopName = sh.Name
		}
		if rd, ok := readingByMeter[m.ID]; ok {
			row.Missing = false
			row.PrevReading = decimal.NewNullDecimal(rd.PrevReading)
			row.CurrReading = decimal.NewNullDecimal(rd.CurrReading)
			row.Units = decimal.NewNullDecimal(rd.Consumption)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ShopCode != rows[j].ShopCode {
			return rows[i].ShopCode < rows[j].ShopCode
		}
		return id.Less(rows[i].MeterID, rows[j].MeterID)
	})
	return rows, nil
}

// InvoiceTable returns one page of invoices with their charge breakdown.
func (s *Service) InvoiceTable(ctx context.Context, marketID id.ID, period string, filter InvoiceTableFilter) (*InvoicePage, error) {
	p, err := parseScope(marketID, period)
	if err != nil {
		return nil, err
	}
	filter.MarketID = marketID
	filter.Period = p

	if filter.Limit <= 0 {
		filter.Limit = defaultTableLimit
	}
	if filter.Limit > maxTableLimit {
		filter.Limit = maxTableLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	page, err := s.deps.Repo.InvoiceTable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get invoice table: %w", err)
	}
	return page, nil
}

func idsOf(shops []*shop.Shop) []id.ID {
	out := make([]id.ID, 0, len(shops))
	for _, sh := range shops {
		out = append(out, sh.ID)
	}
	return out
}

// billingMeterIDs picks the billing meter of every shop.
func billingMeterIDs(meters []*meter.Meter) []id.ID {
	byShop := make(map[id.ID][]*meter.Meter)
	for _, m := range meters {
		byShop[m.ShopID] = append(byShop[m.ShopID], m)
	}
	out := make([]id.ID, 0, len(byShop))
	for _, group := range byShop {
		if m := meter.BillingMeter(group); m != nil {
			out = append(out, m.ID)
		}
	}
	return out
}
