package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/shop"
)

func TestTxManager_RollbackRestoresSnapshot(t *testing.T) {
	store := NewStore()
	txm := store.TxManager()
	markets := store.Markets()
	ctx := context.Background()

	boom := errors.New("boom")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, markets.Create(ctx, market.NewMarket("Rolled back")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := markets.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestTxManager_SavepointKeepsOuterWrites(t *testing.T) {
	store := NewStore()
	txm := store.TxManager()
	markets := store.Markets()
	ctx := context.Background()

	kept := market.NewMarket("Kept")
	dropped := market.NewMarket("Dropped")

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, markets.Create(ctx, kept))
		spErr := txm.RunInSavepoint(ctx, func(ctx context.Context) error {
			require.NoError(t, markets.Create(ctx, dropped))
			return errors.New("shop failed")
		})
		assert.Error(t, spErr)
		return nil
	})
	require.NoError(t, err)

	ok, _ := markets.Exists(ctx, kept.ID)
	assert.True(t, ok)
	ok, _ = markets.Exists(ctx, dropped.ID)
	assert.False(t, ok)
}

func TestShopRepo_UniqueCodeAndFilters(t *testing.T) {
	store := NewStore()
	shops := store.Shops()
	ctx := context.Background()
	marketID := id.New()

	a := shop.NewShop(marketID, "A-1")
	a.AreaSqft = decimal.NewNullDecimal(decimal.NewFromInt(100))
	b := shop.NewShop(marketID, "B-1")
	b.Active = false
	other := shop.NewShop(id.New(), "C-1")

	for _, s := range []*shop.Shop{a, b, other} {
		require.NoError(t, shops.Create(ctx, s))
	}

	dup := shop.NewShop(marketID, "A-1")
	assert.True(t, apperror.IsDuplicate(shops.Create(ctx, dup)))

	active, err := shops.ListByMarket(ctx, marketID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A-1", active[0].Code)

	all, err := shops.ListByMarket(ctx, marketID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)

	page, err := shops.List(ctx, domain.ListFilter{Limit: 1}.WithEquals("market_id", marketID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Len(t, page.Items, 1)

	_, err = shops.List(ctx, domain.DefaultListFilter().WithEquals("secret", 1))
	assert.Error(t, err)
}

func TestTable_ReturnsCopies(t *testing.T) {
	store := NewStore()
	markets := store.Markets()
	ctx := context.Background()

	m := market.NewMarket("Original")
	require.NoError(t, markets.Create(ctx, m))

	got, err := markets.GetByID(ctx, m.ID)
	require.NoError(t, err)
	got.Name = "Mutated"

	again, _ := markets.GetByID(ctx, m.ID)
	assert.Equal(t, "Original", again.Name)
}
