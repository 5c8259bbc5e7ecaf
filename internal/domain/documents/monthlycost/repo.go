package monthlycost

import (
	"context"
	"time"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Repository defines data access for monthly costs.
type Repository interface {
	domain.CatalogRepository[*MonthlyCost]

	// GetByMarketAndPeriod returns the record or a not-found AppError.
	GetByMarketAndPeriod(ctx context.Context, marketID id.ID, period time.Time) (*MonthlyCost, error)

	// SetLocked flips the lock flag.
	SetLocked(ctx context.Context, costID id.ID, locked bool) error
}
