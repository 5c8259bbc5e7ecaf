package meter

import (
	"context"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Repository defines data access for meters.
type Repository interface {
	domain.CatalogRepository[*Meter]

	// ListByShop returns all meters of a shop ordered by id.
	ListByShop(ctx context.Context, shopID id.ID) ([]*Meter, error)

	// ListByShops returns meters of several shops ordered by id.
	ListByShops(ctx context.Context, shopIDs []id.ID) ([]*Meter, error)

	// Multiplier returns the multiplier of a meter, NOT_FOUND when it does not exist.
	Multiplier(ctx context.Context, meterID id.ID) (decimal.Decimal, error)
}
