package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/apperror"
	appctx "marketbill/internal/core/context"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/infrastructure/storage/memory"
)

var jan = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lines(electricity, ac string) []invoice.Line {
	return []invoice.Line{
		{Type: domain.ChargeElectricity, Description: "Electricity consumption", Quantity: dec("10"), Unit: "kWh", UnitPrice: dec("1.5"), Amount: dec(electricity)},
		{Type: domain.ChargeAC, Description: "AC charges", Quantity: dec("100"), Unit: "sqft", UnitPrice: dec("0.333333"), Amount: dec(ac)},
	}
}

type env struct {
	ctx   context.Context
	store *memory.Store
	mat   *invoice.Materializer
	svc   *invoice.Service
}

func newEnv() env {
	store := memory.NewStore()
	return env{
		ctx:   context.Background(),
		store: store,
		mat:   invoice.NewMaterializer(store.Invoices(), store.TxManager()),
		svc:   invoice.NewService(store.Invoices(), store.Adjustments(), store.TxManager()),
	}
}

func (e env) upsert(t *testing.T, shopID id.ID, force bool, l []invoice.Line) invoice.UpsertResult {
	t.Helper()
	res, err := e.mat.Upsert(e.ctx, invoice.UpsertRequest{Period: jan.AddDate(0, 0, 14), ShopID: shopID, Lines: l, Force: force})
	require.NoError(t, err)
	return res
}

func TestMaterializer_CreateThenRecompute(t *testing.T) {
	e := newEnv()
	shopID := id.New()

	created := e.upsert(t, shopID, false, lines("15.004", "33.335"))
	assert.Equal(t, invoice.OutcomeCreated, created.Outcome)
	assert.Equal(t, 1, created.Invoice.Revision)
	assert.Equal(t, invoice.StatusUnpaid, created.Invoice.Status)
	assert.True(t, created.Invoice.Period.Equal(jan))
	assert.Equal(t, "15.00", created.Items[0].Amount.StringFixed(2))
	assert.Equal(t, "33.34", created.Items[1].Amount.StringFixed(2))
	assert.Equal(t, "48.34", created.Invoice.Total.StringFixed(2))

	updated := e.upsert(t, shopID, false, lines("20", "30"))
	assert.Equal(t, invoice.OutcomeUpdated, updated.Outcome)
	assert.Equal(t, created.Invoice.ID, updated.Invoice.ID)
	assert.Equal(t, 2, updated.Invoice.Revision)

	stored, err := e.svc.Get(e.ctx, created.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", stored.Total.StringFixed(2))
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.Equal(invoice.SumItems(stored.Items)))
	assert.NotEqual(t, created.Items[0].ID, stored.Items[0].ID)
}

func TestMaterializer_LockedInvoiceIsUntouched(t *testing.T) {
	e := newEnv()
	shopID := id.New()
	first := e.upsert(t, shopID, false, lines("10", "10"))

	_, err := e.svc.Lock(e.ctx, first.Invoice.ID)
	require.NoError(t, err)

	skipped := e.upsert(t, shopID, false, lines("99", "99"))
	assert.True(t, skipped.Skipped())
	assert.Equal(t, 1, skipped.Invoice.Revision)

	stored, err := e.svc.Get(e.ctx, first.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", stored.Total.StringFixed(2))

	forced := e.upsert(t, shopID, true, lines("99", "99"))
	assert.Equal(t, invoice.OutcomeUpdated, forced.Outcome)
	assert.Equal(t, 2, forced.Invoice.Revision)

	stored, err = e.svc.Get(e.ctx, first.Invoice.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
	assert.Equal(t, "198.00", stored.Total.StringFixed(2))
}

func TestMaterializer_RequiresShop(t *testing.T) {
	e := newEnv()
	_, err := e.mat.Upsert(e.ctx, invoice.UpsertRequest{Period: jan})
	assert.Error(t, err)
}

func TestService_OverrideItem(t *testing.T) {
	e := newEnv()
	shopID := id.New()
	inv := e.upsert(t, shopID, false, lines("10", "20")).Invoice

	out, err := e.svc.OverrideItem(e.ctx, inv.ID, domain.ChargeAC, dec("5.555"), "meter fault")
	require.NoError(t, err)
	assert.Equal(t, "15.56", out.Total.StringFixed(2))
	assert.True(t, invoice.HasOverride(out.Items))

	items, err := e.svc.Items(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.56", invoice.AmountOf(items, domain.ChargeAC).StringFixed(2))
	assert.Equal(t, "meter fault", items[1].OverrideReason)

	_, err = e.svc.OverrideItem(e.ctx, inv.ID, domain.ChargeGenerator, dec("1"), "x")
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.svc.OverrideItem(e.ctx, inv.ID, domain.ChargeAC, dec("1"), " ")
	assert.Error(t, err)

	recomputed := e.upsert(t, shopID, false, lines("10", "20"))
	assert.False(t, invoice.HasOverride(recomputed.Items))
	assert.Equal(t, "30.00", recomputed.Invoice.Total.StringFixed(2))

	_, err = e.svc.Lock(e.ctx, inv.ID)
	require.NoError(t, err)
	_, err = e.svc.OverrideItem(e.ctx, inv.ID, domain.ChargeAC, dec("1"), "late fix")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvoiceLocked, appErr.Code)
}

func TestService_LockAndStatus(t *testing.T) {
	e := newEnv()
	inv := e.upsert(t, id.New(), false, lines("1", "1")).Invoice

	locked, err := e.svc.Lock(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	paid, err := e.svc.SetStatus(e.ctx, inv.ID, " paid ")
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)

	unlocked, err := e.svc.Unlock(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)

	_, err = e.svc.SetStatus(e.ctx, inv.ID, "")
	assert.Error(t, err)

	_, err = e.svc.Lock(e.ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Adjustments(t *testing.T) {
	e := newEnv()
	inv := e.upsert(t, id.New(), false, lines("1", "1")).Invoice
	_, err := e.svc.Lock(e.ctx, inv.ID)
	require.NoError(t, err)

	ctx := appctx.WithActor(e.ctx, "accountant@market")
	ac := domain.ChargeAC
	adj := &invoice.Adjustment{InvoiceID: inv.ID, ItemType: &ac, Label: "Goodwill credit", Amount: dec("-50")}
	require.NoError(t, e.svc.AddAdjustment(ctx, adj))
	assert.Equal(t, "accountant@market", adj.CreatedBy)
	assert.False(t, id.IsNil(adj.ID))

	list, err := e.svc.ListAdjustments(e.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Goodwill credit", list[0].Label)

	err = e.svc.AddAdjustment(e.ctx, &invoice.Adjustment{InvoiceID: inv.ID, Label: "zero", Amount: decimal.Zero})
	assert.Error(t, err)

	err = e.svc.AddAdjustment(e.ctx, &invoice.Adjustment{InvoiceID: id.New(), Label: "orphan", Amount: dec("1")})
	assert.True(t, apperror.IsNotFound(err))

	assert.True(t, apperror.IsNotFound(e.svc.DeleteAdjustment(e.ctx, id.New(), adj.ID)))
	require.NoError(t, e.svc.DeleteAdjustment(e.ctx, inv.ID, adj.ID))

	list, err = e.svc.ListAdjustments(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoice_Number(t *testing.T) {
	inv := &invoice.Invoice{Period: jan}
	inv.ID = id.MustParse("0190b6c8-1234-7abc-8def-0123456789ab")
	assert.Equal(t, "INV-202501-0190b6c8", inv.Number())
}
