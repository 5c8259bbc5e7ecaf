package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/infrastructure/storage/postgres"
)

const meterTable = "meters"

// MeterRepo implements meter.Repository and reading.MeterMultiplier.
type MeterRepo struct {
	*BaseCatalogRepo[*meter.Meter]
}

var _ meter.Repository = (*MeterRepo)(nil)

// NewMeterRepo creates a new meter repository.
func NewMeterRepo(txm *postgres.TxManager) *MeterRepo {
	base := NewBaseCatalogRepo(
		txm,
		meterTable,
		"meter",
		postgres.ExtractDBColumns[meter.Meter](),
		func() *meter.Meter { return &meter.Meter{} },
	).WithSearch("serial")

	return &MeterRepo{BaseCatalogRepo: base}
}

// ListByShop returns all meters of a shop ordered by id.
func (r *MeterRepo) ListByShop(ctx context.Context, shopID id.ID) ([]*meter.Meter, error) {
	return r.FindAll(ctx, r.Select().Where(squirrel.Eq{"shop_id": shopID}).OrderBy("id ASC"))
}

// ListByShops returns the meters of several shops ordered by id.
func (r *MeterRepo) ListByShops(ctx context.Context, shopIDs []id.ID) ([]*meter.Meter, error) {
	if len(shopIDs) == 0 {
		return []*meter.Meter{}, nil
	}
	return r.FindAll(ctx, r.Select().Where(squirrel.Eq{"shop_id": shopIDs}).OrderBy("id ASC"))
}

// Multiplier returns the multiplier of a meter.
func (r *MeterRepo) Multiplier(ctx context.Context, meterID id.ID) (decimal.Decimal, error) {
	sqlStr, args, err := r.Builder().
		Select("multiplier").
		From(meterTable).
		Where(squirrel.Eq{"id": meterID}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var multiplier decimal.Decimal
	if err := r.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&multiplier); err != nil {
		if isNoRows(err) {
			return decimal.Zero, apperror.NewNotFound("meter", meterID.String())
		}
		return decimal.Zero, fmt.Errorf("get multiplier: %w", err)
	}
	return multiplier, nil
}
