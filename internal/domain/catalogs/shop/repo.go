package shop

import (
	"context"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Repository defines data access for shops.
type Repository interface {
	domain.CatalogRepository[*Shop]

	// ListByMarket returns the market's shops ordered by id.
	ListByMarket(ctx context.Context, marketID id.ID, onlyActive bool) ([]*Shop, error)
}
