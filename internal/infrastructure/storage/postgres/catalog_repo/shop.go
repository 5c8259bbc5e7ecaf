package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"marketbill/internal/core/id"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/infrastructure/storage/postgres"
)

const shopTable = "shops"

// ShopRepo implements shop.Repository.
type ShopRepo struct {
	*BaseCatalogRepo[*shop.Shop]
}

var _ shop.Repository = (*ShopRepo)(nil)

// NewShopRepo creates a new shop repository.
func NewShopRepo(txm *postgres.TxManager) *ShopRepo {
	base := NewBaseCatalogRepo(
		txm,
		shopTable,
		"shop",
		postgres.ExtractDBColumns[shop.Shop](),
		func() *shop.Shop { return &shop.Shop{} },
	).WithSearch("code", "name", "owner_name")

	return &ShopRepo{BaseCatalogRepo: base}
}

// ListByMarket returns the shops of a market ordered by id.
func (r *ShopRepo) ListByMarket(ctx context.Context, marketID id.ID, onlyActive bool) ([]*shop.Shop, error) {
	q := r.Select().Where(squirrel.Eq{"market_id": marketID}).OrderBy("id ASC")
	if onlyActive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	return r.FindAll(ctx, q)
}
