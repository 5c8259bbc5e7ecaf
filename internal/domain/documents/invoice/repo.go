package invoice

import (
	"context"
	"time"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Repository defines data access for invoices and their items.
type Repository interface {
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetByPeriodAndShop returns the invoice or a not-found AppError.
	GetByPeriodAndShop(ctx context.Context, period time.Time, shopID id.ID) (*Invoice, error)

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Invoice], error)

	// ListByPeriod returns the invoices of the given shops for one period.
	ListByPeriod(ctx context.Context, period time.Time, shopIDs []id.ID) ([]*Invoice, error)

	// CountLocked counts locked invoices of the given shops for one period.
	CountLocked(ctx context.Context, period time.Time, shopIDs []id.ID) (int, error)

	Create(ctx context.Context, inv *Invoice) error

	// UpdateComputed stores total, revision, meta and updated_at.
	UpdateComputed(ctx context.Context, inv *Invoice) error

	SetLocked(ctx context.Context, invoiceID id.ID, locked bool) error
	SetStatus(ctx context.Context, invoiceID id.ID, status string) error

	// Items returns the items of one invoice in charge order.
	Items(ctx context.Context, invoiceID id.ID) ([]Item, error)

	// ItemsOf returns items of several invoices.
	ItemsOf(ctx context.Context, invoiceIDs []id.ID) ([]Item, error)

	// ReplaceItems deletes all items of the invoice and inserts the given set.
	ReplaceItems(ctx context.Context, invoiceID id.ID, items []Item) error

	// UpdateItem stores a single edited item.
	UpdateItem(ctx context.Context, item Item) error
}

// AdjustmentRepository defines data access for adjustments.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *Adjustment) error
	GetByID(ctx context.Context, adjustmentID id.ID) (*Adjustment, error)
	ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*Adjustment, error)
	Delete(ctx context.Context, adjustmentID id.ID) error
}
