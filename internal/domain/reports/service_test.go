package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/billing"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
	"marketbill/internal/domain/reports"
	"marketbill/internal/infrastructure/storage/memory"
)

var jan = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	market *market.Market
	shops  map[string]*shop.Shop
}

// newFixture seeds two billable shops (A-01, A-02), one shop without a reading
// and runs billing for January 2025.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memory.NewStore(),
		market: market.NewMarket("Central"),
		shops:  map[string]*shop.Shop{},
	}
	require.NoError(t, f.store.Markets().Create(f.ctx, f.market))

	c := monthlycost.NewMonthlyCost(f.market.ID, jan)
	c.TotalAcUnits = dec("5000")
	c.AcUnitPrice = dec("10")
	c.GuardCost = dec("6000")
	c.MaidCost = dec("3000")
	c.OtherCost = dec("1000")
	c.GeneratorEnabled = false
	require.NoError(t, f.store.MonthlyCosts().Create(f.ctx, c))

	tr := tariff.NewTariff(domain.UtilityElectric, dec("15.20"), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.store.Tariffs().Create(f.ctx, tr))

	f.billable("A-01", "1000", "1000", "1120.5")
	f.billable("A-02", "9000", "0", "10")
	f.meter(f.shop("B-01", ""))

	summary, err := billing.NewService(f.billingDeps(), billing.Config{}).
		Run(f.ctx, billing.RunRequest{MarketID: f.market.ID, Period: "2025-01"})
	require.NoError(t, err)
	require.True(t, summary.Success)
	require.Equal(t, 2, summary.ProcessedCount)
	return f
}

func (f *fixture) billingDeps() billing.Deps {
	return billing.Deps{
		Shops:     f.store.Shops(),
		Meters:    f.store.Meters(),
		Readings:  f.store.Readings(),
		Tariffs:   f.store.Tariffs(),
		Costs:     f.store.MonthlyCosts(),
		Locks:     f.store.Invoices(),
		Invoices:  invoice.NewMaterializer(f.store.Invoices(), f.store.TxManager()),
		TxManager: f.store.TxManager(),
	}
}

func (f *fixture) service() *reports.Service {
	return reports.NewService(reports.Deps{
		Repo:     f.store.Reports(),
		Shops:    f.store.Shops(),
		Meters:   f.store.Meters(),
		Readings: f.store.Readings(),
		Tariffs:  f.store.Tariffs(),
		Costs:    f.store.MonthlyCosts(),
		Invoices: f.store.Invoices(),
	}, billing.Config{})
}

func (f *fixture) shop(code, area string) *shop.Shop {
	s := shop.NewShop(f.market.ID, code)
	s.Name = "Shop " + code
	if area != "" {
		s.AreaSqft = decimal.NewNullDecimal(dec(area))
	}
	require.NoError(f.t, f.store.Shops().Create(f.ctx, s))
	f.shops[code] = s
	return s
}

func (f *fixture) meter(s *shop.Shop) *meter.Meter {
	m := meter.NewMeter(s.ID, domain.UtilityElectric, "EM-"+s.Code)
	require.NoError(f.t, f.store.Meters().Create(f.ctx, m))
	return m
}

func (f *fixture) billable(code, area, prev, curr string) {
	m := f.meter(f.shop(code, area))
	require.NoError(f.t, f.store.Readings().Create(f.ctx, reading.NewReading(m.ID, jan, dec(prev), dec(curr))))
}

func (f *fixture) invoiceOf(code string) *invoice.Invoice {
	inv, err := f.store.Invoices().GetByPeriodAndShop(f.ctx, jan, f.shops[code].ID)
	require.NoError(f.t, err)
	return inv
}

func TestMarketSummary(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Invoices().SetLocked(f.ctx, f.invoiceOf("A-01").ID, true))

	summary, err := f.service().MarketSummary(f.ctx, f.market.ID, "2025-01")
	require.NoError(t, err)

	assert.Equal(t, "2025-01", summary.Period)

	k := summary.KPIs
	assert.Equal(t, 2, k.InvoiceCount)
	assert.Equal(t, "61983.60", k.TotalAmount.StringFixed(2))
	assert.Equal(t, "130.5", k.ElectricityUnits.String())
	assert.Equal(t, "1983.60", k.ElectricityAmount.StringFixed(2))
	assert.Equal(t, "50000.00", k.AcCost.StringFixed(2))
	assert.Equal(t, "10000.00", k.ServiceCost.StringFixed(2))
	assert.True(t, k.GeneratorCost.IsZero())

	assert.Equal(t, reports.HealthPanel{
		InputsOk:              true,
		MissingReadingsCount:  1,
		TariffOk:              true,
		UnlockedInvoicesCount: 1,
	}, summary.Health)

	in := summary.Inputs
	assert.Equal(t, "10000", in.MarketTotalSqft.String())
	assert.Equal(t, "15.2", in.ElectricityRate.String())
	require.Len(t, in.Rates, 4)
	assert.Equal(t, domain.ChargeAC, in.Rates[0].Type)
	assert.True(t, in.Rates[0].Rate.Equal(dec("5")))
	assert.True(t, in.Rates[1].Rate.Equal(dec("1")))
	assert.False(t, in.Rates[2].Enabled)
}

func TestMarketSummary_EmptyMonth(t *testing.T) {
	f := newFixture(t)

	summary, err := f.service().MarketSummary(f.ctx, f.market.ID, "2025-02")
	require.NoError(t, err)

	assert.Zero(t, summary.KPIs.InvoiceCount)
	assert.False(t, summary.Health.InputsOk)
	assert.True(t, summary.Health.TariffOk)
	assert.Equal(t, 3, summary.Health.MissingReadingsCount)
	assert.Empty(t, summary.Inputs.Rates)
}

func TestMarketSummary_InvalidScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.service().MarketSummary(f.ctx, id.Nil(), "2025-01")
	assert.Equal(t, apperror.CodeValidation, mustAppErr(t, err).Code)

	_, err = f.service().MarketSummary(f.ctx, f.market.ID, "2025-13")
	assert.Equal(t, apperror.CodeValidation, mustAppErr(t, err).Code)
}

func TestReadingStatus(t *testing.T) {
	f := newFixture(t)

	rows, err := f.service().ReadingStatus(f.ctx, f.market.ID, "2025-01-15")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "A-01", rows[0].ShopCode)
	assert.False(t, rows[0].Missing)
	assert.Equal(t, "120.5", rows[0].Units.Decimal.String())
	assert.Equal(t, "EM-A-01", rows[0].MeterSerial)

	assert.Equal(t, "B-01", rows[2].ShopCode)
	assert.True(t, rows[2].Missing)
	assert.False(t, rows[2].Units.Valid)
}

func TestInvoiceTable(t *testing.T) {
	f := newFixture(t)
	invoices := invoice.NewService(f.store.Invoices(), f.store.Adjustments(), f.store.TxManager())
	_, err := invoices.OverrideItem(f.ctx, f.invoiceOf("A-02").ID, domain.ChargeService, dec("8000"), "Corner discount")
	require.NoError(t, err)

	page, err := f.service().InvoiceTable(f.ctx, f.market.ID, "2025-01", reports.InvoiceTableFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 50, page.Limit)
	require.Len(t, page.Items, 2)

	first, second := page.Items[0], page.Items[1]
	assert.Equal(t, "A-01", first.ShopCode)
	assert.Equal(t, "Shop A-01", first.ShopName)
	assert.Equal(t, "1831.60", first.ElectricityAmount.StringFixed(2))
	assert.False(t, first.HasOverride)

	assert.Equal(t, "A-02", second.ShopCode)
	assert.True(t, second.HasOverride)
	assert.Equal(t, "8000.00", second.ServiceAmount.StringFixed(2))
	assert.Equal(t, "53152.00", second.Total.StringFixed(2))
}

func TestInvoiceTable_Pagination(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	page, err := svc.InvoiceTable(f.ctx, f.market.ID, "2025-01", reports.InvoiceTableFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A-02", page.Items[0].ShopCode)

	page, err = svc.InvoiceTable(f.ctx, f.market.ID, "2025-01", reports.InvoiceTableFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = svc.InvoiceTable(f.ctx, f.market.ID, "2025-01", reports.InvoiceTableFilter{Status: "PAID"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func mustAppErr(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr
}
