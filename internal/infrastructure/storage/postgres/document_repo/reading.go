package document_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain/documents/reading"
	"marketbill/internal/infrastructure/storage/postgres"
)

// ReadingRepo implements reading.Repository.
type ReadingRepo struct {
	*BaseDocumentRepo[*reading.Reading]
}

var _ reading.Repository = (*ReadingRepo)(nil)

// NewReadingRepo creates a new reading repository.
func NewReadingRepo(txm *postgres.TxManager) *ReadingRepo {
	return &ReadingRepo{NewBaseDocumentRepo(
		txm,
		"meter_readings",
		"reading",
		postgres.ExtractDBColumns[reading.Reading](),
		func() *reading.Reading { return &reading.Reading{} },
	)}
}

// GetByMeterAndPeriod returns the reading of a meter for the month containing period.
func (r *ReadingRepo) GetByMeterAndPeriod(ctx context.Context, meterID id.ID, period time.Time) (*reading.Reading, error) {
	period = types.MonthStart(period)
	return r.GetBy(ctx, squirrel.Eq{"meter_id": meterID, "period": period}, types.FormatPeriod(period))
}

// ListByPeriod returns the readings of the given meters for one month.
func (r *ReadingRepo) ListByPeriod(ctx context.Context, period time.Time, meterIDs []id.ID) ([]*reading.Reading, error) {
	if len(meterIDs) == 0 {
		return []*reading.Reading{}, nil
	}
	return r.FindAll(ctx, r.Select().
		Where(squirrel.Eq{"period": types.MonthStart(period), "meter_id": meterIDs}).
		OrderBy("meter_id ASC"))
}
