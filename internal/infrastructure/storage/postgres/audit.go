package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "marketbill/internal/core/context"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain/billing"
)

// CompressionAlgo specifies the compression algorithm used for stored summaries.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the summary size above which it is stored compressed.
const defaultCompressThreshold = 8 * 1024

// RunRecord is one row of sys_billing_runs.
type RunRecord struct {
	ID                id.ID           `db:"id" json:"id"`
	MarketID          id.ID           `db:"market_id" json:"marketId"`
	Period            time.Time       `db:"period" json:"period"`
	Force             bool            `db:"force" json:"force"`
	Success           bool            `db:"success" json:"success"`
	ProcessedCount    int             `db:"processed_count" json:"processedCount"`
	SkippedCount      int             `db:"skipped_count" json:"skippedCount"`
	Actor             string          `db:"actor" json:"actor"`
	Summary           json.RawMessage `db:"summary" json:"summary,omitempty"`
	SummaryCompressed []byte          `db:"summary_compressed" json:"-"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo" json:"-"`
	DurationMs        int64           `db:"duration_ms" json:"durationMs"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

// RunAudit keeps the history of billing runs in sys_billing_runs.
// Large summaries (many shops) are stored zstd-compressed.
type RunAudit struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var (
	_ billing.RunRecorder = (*RunAudit)(nil)
	_ billing.RunHistory  = (*RunAudit)(nil)
)

// NewRunAudit creates a new run audit.
func NewRunAudit(txManager *TxManager) (*RunAudit, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &RunAudit{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// RecordRun implements billing.RunRecorder.
func (a *RunAudit) RecordRun(ctx context.Context, summary *billing.RunSummary) error {
	period, err := types.ParsePeriod(summary.Period)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	rec := RunRecord{
		ID:              id.New(),
		MarketID:        summary.MarketID,
		Period:          period,
		Force:           summary.Force,
		Success:         summary.Success,
		ProcessedCount:  summary.ProcessedCount,
		SkippedCount:    summary.SkippedCount,
		Actor:           appctx.GetActor(ctx),
		DurationMs:      summary.DurationMs,
		CreatedAt:       time.Now().UTC(),
		CompressionAlgo: CompressionNone,
		Summary:         raw,
	}
	a.compress(&rec)

	_, err = a.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_billing_runs (
			id, market_id, period, force, success, processed_count, skipped_count,
			actor, summary, summary_compressed, compression_algo, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		rec.ID, rec.MarketID, rec.Period, rec.Force, rec.Success, rec.ProcessedCount, rec.SkippedCount,
		rec.Actor, rec.Summary, rec.SummaryCompressed, rec.CompressionAlgo, rec.DurationMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert billing run: %w", err)
	}
	return nil
}

func (a *RunAudit) compress(rec *RunRecord) {
	if len(rec.Summary) <= a.compressThreshold {
		return
	}
	rec.SummaryCompressed = a.encoder.EncodeAll(rec.Summary, nil)
	rec.Summary = nil
	rec.CompressionAlgo = CompressionZstd
}

func (a *RunAudit) decompress(rec *RunRecord) error {
	if rec.CompressionAlgo != CompressionZstd || len(rec.SummaryCompressed) == 0 {
		return nil
	}
	raw, err := a.decoder.DecodeAll(rec.SummaryCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress summary: %w", err)
	}
	rec.Summary = raw
	rec.SummaryCompressed = nil
	return nil
}

// History returns the latest runs of a market, newest first.
func (a *RunAudit) History(ctx context.Context, marketID id.ID, limit int) ([]billing.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, market_id, period, force, success, processed_count, skipped_count,
		       actor, summary, summary_compressed, compression_algo, duration_ms, created_at
		FROM sys_billing_runs
		WHERE market_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("query billing runs: %w", err)
	}
	defer rows.Close()

	records := []billing.RunRecord{}
	for rows.Next() {
		var r RunRecord
		err := rows.Scan(
			&r.ID, &r.MarketID, &r.Period, &r.Force, &r.Success, &r.ProcessedCount, &r.SkippedCount,
			&r.Actor, &r.Summary, &r.SummaryCompressed, &r.CompressionAlgo, &r.DurationMs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan billing run: %w", err)
		}
		if err := a.decompress(&r); err != nil {
			return nil, err
		}
		records = append(records, r.Record())
	}

	return records, rows.Err()
}

// Record converts the row into the domain history entry.
func (r RunRecord) Record() billing.RunRecord {
	return billing.RunRecord{
		ID:             r.ID,
		MarketID:       r.MarketID,
		Period:         types.FormatPeriod(r.Period),
		Force:          r.Force,
		Success:        r.Success,
		ProcessedCount: r.ProcessedCount,
		SkippedCount:   r.SkippedCount,
		Actor:          r.Actor,
		DurationMs:     r.DurationMs,
		Summary:        r.Summary,
		CreatedAt:      r.CreatedAt,
	}
}
