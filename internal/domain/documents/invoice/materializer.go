package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
)

// Outcome tells what Upsert did.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	// OutcomeLocked means an existing locked invoice was left untouched.
	OutcomeLocked Outcome = "locked"
)

// UpsertRequest is the computed charge of one shop for one period.
type UpsertRequest struct {
	Period time.Time
	ShopID id.ID
	Lines  []Line
	Basis  Basis
	Force  bool
}

// UpsertResult is returned by Upsert.
type UpsertResult struct {
	Outcome Outcome
	Invoice *Invoice
	Items   []Item
}

// Skipped reports whether the invoice was left untouched.
func (r UpsertResult) Skipped() bool {
	return r.Outcome == OutcomeLocked
}

// Materializer writes computed charges as invoices under the lock and revision rules:
// a locked invoice is not touched unless forced, a recompute bumps the revision
// and replaces all items, a new invoice starts UNPAID at revision 1.
type Materializer struct {
	repo Repository
	txm  tx.Manager
	now  func() time.Time
}

// NewMaterializer creates a Materializer.
func NewMaterializer(repo Repository, txm tx.Manager) *Materializer {
	return &Materializer{
		repo: repo,
		txm:  txm,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Upsert creates or recomputes the invoice of (period, shop).
// Header and items are written in one transaction (joined when ctx already has one).
func (m *Materializer) Upsert(ctx context.Context, req UpsertRequest) (UpsertResult, error) {
	if id.IsNil(req.ShopID) {
		return UpsertResult{}, apperror.NewValidation("shopId is required")
	}
	period := types.MonthStart(req.Period)

	var result UpsertResult
	err := m.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := m.repo.GetByPeriodAndShop(ctx, period, req.ShopID)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("load invoice: %w", err)
		}

		if existing != nil && existing.Locked && !req.Force {
			result = UpsertResult{Outcome: OutcomeLocked, Invoice: existing}
			return nil
		}

		meta, err := m.encodeBasis(req.Basis)
		if err != nil {
			return err
		}

		if existing != nil {
			result, err = m.recompute(ctx, existing, req.Lines, meta)
		} else {
			result, err = m.create(ctx, period, req.ShopID, req.Lines, meta)
		}
		return err
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

func (m *Materializer) recompute(ctx context.Context, inv *Invoice, lines []Line, meta json.RawMessage) (UpsertResult, error) {
	items := buildItems(inv.ID, lines)

	inv.Total = SumItems(items)
	inv.Revision++
	inv.Meta = meta
	inv.UpdatedAt = m.now()

	if err := m.repo.UpdateComputed(ctx, inv); err != nil {
		return UpsertResult{}, fmt.Errorf("update invoice: %w", err)
	}
	if err := m.repo.ReplaceItems(ctx, inv.ID, items); err != nil {
		return UpsertResult{}, fmt.Errorf("replace items: %w", err)
	}
	return UpsertResult{Outcome: OutcomeUpdated, Invoice: inv, Items: items}, nil
}

func (m *Materializer) create(ctx context.Context, period time.Time, shopID id.ID, lines []Line, meta json.RawMessage) (UpsertResult, error) {
	base := entity.NewBaseEntity()
	base.CreatedAt, base.UpdatedAt = m.now(), m.now()

	inv := &Invoice{
		BaseEntity: base,
		Period:     period,
		ShopID:     shopID,
		Status:     StatusUnpaid,
		Locked:     false,
		Revision:   1,
		Meta:       meta,
	}
	items := buildItems(inv.ID, lines)
	inv.Total = SumItems(items)

	if err := m.repo.Create(ctx, inv); err != nil {
		return UpsertResult{}, fmt.Errorf("create invoice: %w", err)
	}
	if err := m.repo.ReplaceItems(ctx, inv.ID, items); err != nil {
		return UpsertResult{}, fmt.Errorf("insert items: %w", err)
	}
	return UpsertResult{Outcome: OutcomeCreated, Invoice: inv, Items: items}, nil
}

func (m *Materializer) encodeBasis(b Basis) (json.RawMessage, error) {
	if b.ComputedAt.IsZero() {
		b.ComputedAt = m.now()
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode basis: %w", err)
	}
	return raw, nil
}

func buildItems(invoiceID id.ID, lines []Line) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ID:          id.New(),
			InvoiceID:   invoiceID,
			ItemType:    l.Type,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			Amount:      types.RoundMoney(l.Amount),
		})
	}
	return items
}
