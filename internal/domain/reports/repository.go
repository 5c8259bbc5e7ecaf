package reports

import (
	"context"
	"time"

	"marketbill/internal/core/id"
)

// Repository defines report data access interface.
type Repository interface {
	// KPIs aggregates invoices of the market's shops for one month.
	KPIs(ctx context.Context, marketID id.ID, period time.Time) (KPIs, error)

	// InvoiceTable returns one page of invoice rows.
	InvoiceTable(ctx context.Context, filter InvoiceTableFilter) (*InvoicePage, error)
}
