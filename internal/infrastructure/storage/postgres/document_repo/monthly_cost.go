package document_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/infrastructure/storage/postgres"
)

// MonthlyCostRepo implements monthlycost.Repository.
type MonthlyCostRepo struct {
	*BaseDocumentRepo[*monthlycost.MonthlyCost]
}

var _ monthlycost.Repository = (*MonthlyCostRepo)(nil)

// NewMonthlyCostRepo creates a new monthly cost repository.
func NewMonthlyCostRepo(txm *postgres.TxManager) *MonthlyCostRepo {
	return &MonthlyCostRepo{NewBaseDocumentRepo(
		txm,
		"monthly_costs",
		"monthly cost",
		postgres.ExtractDBColumns[monthlycost.MonthlyCost](),
		func() *monthlycost.MonthlyCost { return &monthlycost.MonthlyCost{} },
	)}
}

// GetByMarketAndPeriod returns the cost inputs of a market for one month.
func (r *MonthlyCostRepo) GetByMarketAndPeriod(ctx context.Context, marketID id.ID, period time.Time) (*monthlycost.MonthlyCost, error) {
	period = types.MonthStart(period)
	return r.GetBy(ctx, squirrel.Eq{"market_id": marketID, "period": period}, types.FormatPeriod(period))
}

// SetLocked sets or clears the locked flag.
func (r *MonthlyCostRepo) SetLocked(ctx context.Context, costID id.ID, locked bool) error {
	return r.SetColumn(ctx, costID, "locked", locked)
}
