package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appctx "marketbill/internal/core/context"
	"marketbill/internal/core/id"
	"marketbill/internal/domain/billing"
)

// RunLog implements billing.RunRecorder and billing.RunHistory.
type RunLog struct {
	store *Store
}

var (
	_ billing.RunRecorder = (*RunLog)(nil)
	_ billing.RunHistory  = (*RunLog)(nil)
)

// Runs returns the billing run log of the store.
func (s *Store) Runs() *RunLog {
	return &RunLog{store: s}
}

// RecordRun appends the summary to the log.
func (l *RunLog) RecordRun(ctx context.Context, summary *billing.RunSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	rec := billing.RunRecord{
		ID:             id.New(),
		MarketID:       summary.MarketID,
		Period:         summary.Period,
		Force:          summary.Force,
		Success:        summary.Success,
		ProcessedCount: summary.ProcessedCount,
		SkippedCount:   summary.SkippedCount,
		Actor:          appctx.GetActor(ctx),
		DurationMs:     summary.DurationMs,
		Summary:        raw,
		CreatedAt:      time.Now().UTC(),
	}
	l.store.runsMu.Lock()
	defer l.store.runsMu.Unlock()
	l.store.runs = append(l.store.runs, rec)
	return nil
}

// History returns the latest runs of a market, newest first.
func (l *RunLog) History(ctx context.Context, marketID id.ID, limit int) ([]billing.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []billing.RunRecord{}
	l.store.runsMu.RLock()
	defer l.store.runsMu.RUnlock()
	for i := len(l.store.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if l.store.runs[i].MarketID == marketID {
			out = append(out, l.store.runs[i])
		}
	}
	return out, nil
}
