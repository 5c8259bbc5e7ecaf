package billing

import (
	"context"
	"encoding/json"
	"time"

	"marketbill/internal/core/id"
)

// RunRecord is one entry of the billing run history.
type RunRecord struct {
	ID             id.ID           `json:"id"`
	MarketID       id.ID           `json:"marketId"`
	Period         string          `json:"period"`
	Force          bool            `json:"force"`
	Success        bool            `json:"success"`
	ProcessedCount int             `json:"processedCount"`
	SkippedCount   int             `json:"skippedCount"`
	Actor          string          `json:"actor"`
	DurationMs     int64           `json:"durationMs"`
	Summary        json.RawMessage `json:"summary,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// RunHistory lists recorded runs of a market, newest first.
type RunHistory interface {
	History(ctx context.Context, marketID id.ID, limit int) ([]RunRecord, error)
}
