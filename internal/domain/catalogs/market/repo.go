package market

import (
	"marketbill/internal/domain"
)

// Repository defines data access for markets.
type Repository interface {
	domain.CatalogRepository[*Market]
}
