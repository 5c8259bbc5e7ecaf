package catalog_repo

import (
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/infrastructure/storage/postgres"
)

const marketTable = "markets"

// MarketRepo implements market.Repository.
type MarketRepo struct {
	*BaseCatalogRepo[*market.Market]
}

var _ market.Repository = (*MarketRepo)(nil)

// NewMarketRepo creates a new market repository.
func NewMarketRepo(txm *postgres.TxManager) *MarketRepo {
	base := NewBaseCatalogRepo(
		txm,
		marketTable,
		"market",
		postgres.ExtractDBColumns[market.Market](),
		func() *market.Market { return &market.Market{} },
	).WithSearch("name", "address").WithDefaultOrder("name ASC")

	return &MarketRepo{BaseCatalogRepo: base}
}
