package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "marketbill/internal/core/context"
	"marketbill/internal/core/id"
	"marketbill/internal/domain/billing"
)

func TestRunLog_HistoryNewestFirst(t *testing.T) {
	runs := NewStore().Runs()
	ctx := appctx.WithActor(context.Background(), "operator-1")

	marketID, otherID := id.New(), id.New()
	for _, p := range []string{"2025-01", "2025-02", "2025-03"} {
		require.NoError(t, runs.RecordRun(ctx, &billing.RunSummary{MarketID: marketID, Period: p, Success: true}))
	}
	require.NoError(t, runs.RecordRun(ctx, &billing.RunSummary{MarketID: otherID, Period: "2025-01"}))

	got, err := runs.History(ctx, marketID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03", got[0].Period)
	assert.Equal(t, "2025-02", got[1].Period)
	assert.Equal(t, "operator-1", got[0].Actor)
	assert.NotEmpty(t, got[0].Summary)

	empty, err := runs.History(ctx, id.New(), 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRunLog_SurvivesRolledBackSavepoint(t *testing.T) {
	store := NewStore()
	txm := store.TxManager()
	ctx := context.Background()
	marketID := id.New()

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		spErr := txm.RunInSavepoint(ctx, func(ctx context.Context) error {
			require.NoError(t, store.Runs().RecordRun(ctx, &billing.RunSummary{MarketID: marketID, Period: "2025-01"}))
			return errors.New("shop failed")
		})
		assert.EqualError(t, spErr, "shop failed")
		return nil
	})
	require.NoError(t, err)

	got, err := store.Runs().History(ctx, marketID, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Runs().RecordRun(ctx, &billing.RunSummary{MarketID: marketID, Period: "2025-02"}))
		return errors.New("rollback")
	})
	require.Error(t, err)

	got, err = store.Runs().History(ctx, marketID, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
