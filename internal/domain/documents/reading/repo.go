package reading

import (
	"context"
	"time"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Repository defines data access for readings.
type Repository interface {
	domain.CatalogRepository[*Reading]

	// GetByMeterAndPeriod returns the reading or a not-found AppError.
	GetByMeterAndPeriod(ctx context.Context, meterID id.ID, period time.Time) (*Reading, error)

	// ListByPeriod returns the readings of the given meters for one period.
	ListByPeriod(ctx context.Context, period time.Time, meterIDs []id.ID) ([]*Reading, error)
}
