package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/infrastructure/storage/postgres"
)

const tariffTable = "tariffs"

// TariffRepo implements tariff.Repository.
type TariffRepo struct {
	*BaseCatalogRepo[*tariff.Tariff]
}

var _ tariff.Repository = (*TariffRepo)(nil)

// NewTariffRepo creates a new tariff repository.
func NewTariffRepo(txm *postgres.TxManager) *TariffRepo {
	base := NewBaseCatalogRepo(
		txm,
		tariffTable,
		"tariff",
		postgres.ExtractDBColumns[tariff.Tariff](),
		func() *tariff.Tariff { return &tariff.Tariff{} },
	).WithDefaultOrder("effective_from DESC")

	return &TariffRepo{BaseCatalogRepo: base}
}

// ListByUtility returns the tariffs of one utility, newest effectiveFrom first.
func (r *TariffRepo) ListByUtility(ctx context.Context, utility domain.UtilityType) ([]*tariff.Tariff, error) {
	return r.FindAll(ctx, r.Select().
		Where(squirrel.Eq{"utility_type": utility}).
		OrderBy("effective_from DESC", "id ASC"))
}
