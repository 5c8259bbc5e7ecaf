package invoice

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	appctx "marketbill/internal/core/context"
	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/pkg/logger"
)

// Service provides invoice queries and the manual operations accounting performs on them.
type Service struct {
	repo        Repository
	adjustments AdjustmentRepository
	txm         tx.Manager
}

// NewService creates a new invoice service.
func NewService(repo Repository, adjustments AdjustmentRepository, txm tx.Manager) *Service {
	return &Service{repo: repo, adjustments: adjustments, txm: txm}
}

// WithItems is an invoice together with its items.
type WithItems struct {
	*Invoice
	Items []Item `json:"items"`
}

// Get returns the invoice with its items.
func (s *Service) Get(ctx context.Context, invoiceID id.ID) (*WithItems, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return &WithItems{Invoice: inv, Items: items}, nil
}

// List returns invoices matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}

// Items returns the items of one invoice.
func (s *Service) Items(ctx context.Context, invoiceID id.ID) ([]Item, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.Items(ctx, invoiceID)
}

// Lock freezes the invoice against recomputation.
func (s *Service) Lock(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.setLocked(ctx, invoiceID, true)
}

// Unlock allows recomputation again.
func (s *Service) Unlock(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.setLocked(ctx, invoiceID, false)
}

func (s *Service) setLocked(ctx context.Context, invoiceID id.ID, locked bool) (*Invoice, error) {
	var inv *Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Locked == locked {
			return nil
		}
		if err := s.repo.SetLocked(ctx, invoiceID, locked); err != nil {
			return fmt.Errorf("set locked: %w", err)
		}
		inv.Locked = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice lock changed", "invoice_id", invoiceID, "locked", locked)
	return inv, nil
}

// SetStatus changes the payment status. Allowed on locked invoices.
func (s *Service) SetStatus(ctx context.Context, invoiceID id.ID, status string) (*Invoice, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return nil, apperror.NewValidation("status is required").WithDetail("field", "status")
	}

	var inv *Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := s.repo.SetStatus(ctx, invoiceID, status); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		inv.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// OverrideItem replaces the amount of one item by hand and re-totals the invoice.
// The next billing run discards the override.
func (s *Service) OverrideItem(ctx context.Context, invoiceID id.ID, itemType domain.ChargeType, amount decimal.Decimal, reason string) (*WithItems, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidation("reason is required").WithDetail("field", "reason")
	}
	if amount.IsNegative() {
		return nil, apperror.NewValidation("amount cannot be negative").WithDetail("field", "amount")
	}

	var out *WithItems
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Locked {
			return apperror.NewInvoiceLocked(invoiceID.String())
		}

		items, err := s.repo.Items(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}

		idx := -1
		for i := range items {
			if items[i].ItemType == itemType {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperror.NewNotFound("invoice item", string(itemType))
		}

		items[idx].Amount = types.RoundMoney(amount)
		items[idx].IsOverridden = true
		items[idx].OverrideReason = reason
		if err := s.repo.UpdateItem(ctx, items[idx]); err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		inv.Total = SumItems(items)
		if err := s.repo.UpdateComputed(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		out = &WithItems{Invoice: inv, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddAdjustment records a manual adjustment. The acting operator is taken from ctx.
func (s *Service) AddAdjustment(ctx context.Context, adj *Adjustment) error {
	if id.IsNil(adj.ID) {
		adj.ID = id.New()
	}
	adj.CreatedBy = appctx.GetActor(ctx)

	if err := adj.Validate(ctx); err != nil {
		return err
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, adj.InvoiceID); err != nil {
			return err
		}
		if err := s.adjustments.Create(ctx, adj); err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}
		return nil
	})
}

// ListAdjustments returns the adjustments of one invoice.
func (s *Service) ListAdjustments(ctx context.Context, invoiceID id.ID) ([]*Adjustment, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.adjustments.ListByInvoice(ctx, invoiceID)
}

// DeleteAdjustment removes an adjustment of the given invoice.
func (s *Service) DeleteAdjustment(ctx context.Context, invoiceID, adjustmentID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		adj, err := s.adjustments.GetByID(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if adj.InvoiceID != invoiceID {
			return apperror.NewNotFound("adjustment", adjustmentID.String())
		}
		return s.adjustments.Delete(ctx, adjustmentID)
	})
}
