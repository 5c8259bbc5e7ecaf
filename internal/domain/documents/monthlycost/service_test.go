package monthlycost

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
)

type memRepo struct {
	rows map[id.ID]*MonthlyCost
}

func newMemRepo() *memRepo { return &memRepo{rows: map[id.ID]*MonthlyCost{}} }

func (r *memRepo) Create(_ context.Context, c *MonthlyCost) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, costID id.ID) (*MonthlyCost, error) {
	c, ok := r.rows[costID]
	if !ok {
		return nil, apperror.NewNotFound("monthly_costs", costID)
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, c *MonthlyCost) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, costID id.ID) error {
	delete(r.rows, costID)
	return nil
}

func (r *memRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*MonthlyCost], error) {
	return domain.ListResult[*MonthlyCost]{}, nil
}

func (r *memRepo) Exists(_ context.Context, costID id.ID) (bool, error) {
	_, ok := r.rows[costID]
	return ok, nil
}

func (r *memRepo) GetByMarketAndPeriod(_ context.Context, marketID id.ID, period time.Time) (*MonthlyCost, error) {
	for _, c := range r.rows {
		if c.MarketID == marketID && c.Period.Equal(period) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("monthly_costs", period)
}

func (r *memRepo) SetLocked(_ context.Context, costID id.ID, locked bool) error {
	r.rows[costID].Locked = locked
	return nil
}

type knownMarkets map[id.ID]bool

func (k knownMarkets) Exists(_ context.Context, marketID id.ID) (bool, error) {
	return k[marketID], nil
}

type fixedArea decimal.Decimal

func (f fixedArea) BillableArea(_ context.Context, _ id.ID, override decimal.NullDecimal) (decimal.Decimal, error) {
	if override.Valid {
		return override.Decimal, nil
	}
	return decimal.Decimal(f), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) RunInSavepoint(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func newTestService(marketID id.ID) (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, knownMarkets{marketID: true}, fixedArea(decimal.NewFromInt(500)), passthroughTx{})
	return svc, repo
}

func TestMonthlyCost_Pools(t *testing.T) {
	c := NewMonthlyCost(id.New(), time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC))
	c.TotalAcUnits = decimal.NewFromInt(100)
	c.AcUnitPrice = decimal.RequireFromString("10.5")
	c.GuardCost = decimal.NewFromInt(300)
	c.MaidCost = decimal.NewFromInt(150)
	c.OtherCost = decimal.NewFromInt(50)

	assert.Equal(t, "2025-01", c.PeriodLabel())
	assert.True(t, c.AcPool().Equal(decimal.NewFromInt(1050)))
	assert.True(t, c.ServicePool().Equal(decimal.NewFromInt(500)))

	pools := c.AreaPools()
	require.Len(t, pools, 4)
	assert.Equal(t, domain.ChargeAC, pools[0].Type)
	assert.True(t, pools[0].Enabled)
	assert.False(t, pools[3].Enabled)
	assert.Equal(t, "Special charges", pools[3].Label)
}

func TestMonthlyCost_Validate(t *testing.T) {
	c := NewMonthlyCost(id.New(), time.Now())
	c.GuardCost = decimal.NewFromInt(-1)
	assert.Error(t, c.Validate(context.Background()))

	c.GuardCost = decimal.Zero
	issue := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, -1)
	c.IssueDate, c.DueDate = &issue, &due
	assert.Error(t, c.Validate(context.Background()))

	c.DueDate = nil
	assert.NoError(t, c.Validate(context.Background()))
}

func TestService_Create_SnapshotsArea(t *testing.T) {
	marketID := id.New()
	svc, repo := newTestService(marketID)

	c := NewMonthlyCost(marketID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, svc.Create(context.Background(), c))
	assert.True(t, repo.rows[c.ID].BillingArea.Equal(decimal.NewFromInt(500)))

	manual := NewMonthlyCost(marketID, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	manual.AreaOverride = decimal.NewNullDecimal(decimal.NewFromInt(800))
	require.NoError(t, svc.Create(context.Background(), manual))
	assert.True(t, repo.rows[manual.ID].BillingArea.Equal(decimal.NewFromInt(800)))
}

func TestService_Create_UnknownMarket(t *testing.T) {
	svc, _ := newTestService(id.New())

	err := svc.Create(context.Background(), NewMonthlyCost(id.New(), time.Now()))
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_LockedRecordIsImmutable(t *testing.T) {
	marketID := id.New()
	svc, repo := newTestService(marketID)
	ctx := context.Background()

	c := NewMonthlyCost(marketID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, svc.Create(ctx, c))

	locked, err := svc.Lock(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	edit := *repo.rows[c.ID]
	edit.GuardCost = decimal.NewFromInt(999)
	err = svc.Update(ctx, &edit)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCostLocked, appErr.Code)
	assert.True(t, repo.rows[c.ID].GuardCost.IsZero())

	err = svc.Delete(ctx, c.ID)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCostLocked, appErr.Code)

	_, err = svc.Unlock(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, &edit))
	assert.True(t, repo.rows[c.ID].GuardCost.Equal(decimal.NewFromInt(999)))
	assert.False(t, repo.rows[c.ID].Locked)

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.Empty(t, repo.rows)
}
