package tariff

import (
	"context"

	"marketbill/internal/domain"
)

// Repository defines data access for tariffs.
type Repository interface {
	domain.CatalogRepository[*Tariff]

	// ListByUtility returns tariffs of one utility, newest effectiveFrom first.
	ListByUtility(ctx context.Context, utility domain.UtilityType) ([]*Tariff, error)
}
