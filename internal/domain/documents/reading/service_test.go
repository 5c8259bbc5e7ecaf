package reading

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

type fakeRepo struct {
	domain.CatalogRepository[*Reading]
	created []*Reading
}

func (f *fakeRepo) Create(_ context.Context, r *Reading) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRepo) GetByMeterAndPeriod(context.Context, id.ID, time.Time) (*Reading, error) {
	return nil, apperror.NewNotFound("reading", "")
}

func (f *fakeRepo) ListByPeriod(context.Context, time.Time, []id.ID) ([]*Reading, error) {
	return nil, nil
}

type fakeMeters map[id.ID]decimal.Decimal

func (f fakeMeters) Multiplier(_ context.Context, meterID id.ID) (decimal.Decimal, error) {
	m, ok := f[meterID]
	if !ok {
		return decimal.Zero, apperror.NewNotFound("meter", meterID.String())
	}
	return m, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) RunInSavepoint(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestReading_Compute(t *testing.T) {
	r := NewReading(id.New(), time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(1000), decimal.NewFromInt(1250))

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), r.Period)
	assert.True(t, r.Consumption.Equal(decimal.NewFromInt(250)))

	r.Multiplier = decimal.NewFromInt(40)
	r.Compute()
	assert.True(t, r.Consumption.Equal(decimal.NewFromInt(10000)))
}

func TestReading_Validate(t *testing.T) {
	r := NewReading(id.New(), time.Now(), decimal.NewFromInt(500), decimal.NewFromInt(499))
	err := r.Validate(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	r.CurrReading = decimal.NewFromInt(500)
	assert.NoError(t, r.Validate(context.Background()))
}

func TestService_Create_InheritsMeterMultiplier(t *testing.T) {
	meterID := id.New()
	repo := &fakeRepo{}
	svc := NewService(repo, fakeMeters{meterID: decimal.NewFromInt(20)}, passthroughTx{})

	r := NewReading(meterID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10), decimal.NewFromInt(15))
	require.NoError(t, svc.Create(context.Background(), r))

	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].Multiplier.Equal(decimal.NewFromInt(20)))
	assert.True(t, repo.created[0].Consumption.Equal(decimal.NewFromInt(100)))
}

func TestService_Create_UnknownMeter(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeMeters{}, passthroughTx{})

	r := NewReading(id.New(), time.Now(), decimal.Zero, decimal.NewFromInt(1))
	err := svc.Create(context.Background(), r)
	assert.True(t, apperror.IsNotFound(err))
}
