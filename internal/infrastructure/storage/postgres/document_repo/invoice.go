package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/internal/infrastructure/storage/postgres/catalog_repo"
)

const itemTable = "invoice_items"

// itemOrder sorts items in charge order.
var itemOrder = "array_position(ARRAY['" + strings.Join([]string{
	string(domain.ChargeElectricity),
	string(domain.ChargeAC),
	string(domain.ChargeService),
	string(domain.ChargeGenerator),
	string(domain.ChargeSpecial),
}, "','") + "'], item_type)"

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
	batch    *postgres.BatchExecutor
	itemCols []string
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			"invoices",
			"invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
		batch:    postgres.NewBatchExecutor(txm),
		itemCols: postgres.ExtractDBColumns[invoice.Item](),
	}
}

// GetByPeriodAndShop returns the invoice of a shop for one month.
func (r *InvoiceRepo) GetByPeriodAndShop(ctx context.Context, period time.Time, shopID id.ID) (*invoice.Invoice, error) {
	period = types.MonthStart(period)
	return r.GetBy(ctx, squirrel.Eq{"period": period, "shop_id": shopID}, types.FormatPeriod(period))
}

// ListByPeriod returns the invoices of the given shops for one month.
func (r *InvoiceRepo) ListByPeriod(ctx context.Context, period time.Time, shopIDs []id.ID) ([]*invoice.Invoice, error) {
	if len(shopIDs) == 0 {
		return []*invoice.Invoice{}, nil
	}
	return r.FindAll(ctx, r.Select().
		Where(squirrel.Eq{"period": types.MonthStart(period), "shop_id": shopIDs}).
		OrderBy("shop_id ASC"))
}

// CountLocked counts locked invoices of the given shops for one month.
func (r *InvoiceRepo) CountLocked(ctx context.Context, period time.Time, shopIDs []id.ID) (int, error) {
	if len(shopIDs) == 0 {
		return 0, nil
	}

	sqlStr, args, err := r.Builder().
		Select("COUNT(*)").
		From(r.TableName()).
		Where(squirrel.Eq{"period": types.MonthStart(period), "shop_id": shopIDs, "locked": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count locked invoices: %w", err)
	}
	return n, nil
}

// UpdateComputed writes total, revision and meta of a recomputed invoice.
func (r *InvoiceRepo) UpdateComputed(ctx context.Context, inv *invoice.Invoice) error {
	sqlStr, args, err := r.Builder().
		Update(r.TableName()).
		Set("total", inv.Total).
		Set("revision", inv.Revision).
		Set("meta", inv.Meta).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	return nil
}

// SetLocked sets or clears the locked flag.
func (r *InvoiceRepo) SetLocked(ctx context.Context, invoiceID id.ID, locked bool) error {
	return r.SetColumn(ctx, invoiceID, "locked", locked)
}

// SetStatus changes the payment status.
func (r *InvoiceRepo) SetStatus(ctx context.Context, invoiceID id.ID, status string) error {
	return r.SetColumn(ctx, invoiceID, "status", status)
}

// Items returns the items of one invoice in charge order.
func (r *InvoiceRepo) Items(ctx context.Context, invoiceID id.ID) ([]invoice.Item, error) {
	return r.ItemsOf(ctx, []id.ID{invoiceID})
}

// ItemsOf returns the items of several invoices, grouped by invoice in charge order.
func (r *InvoiceRepo) ItemsOf(ctx context.Context, invoiceIDs []id.ID) ([]invoice.Item, error) {
	items := make([]invoice.Item, 0)
	if len(invoiceIDs) == 0 {
		return items, nil
	}

	sqlStr, args, err := r.Builder().
		Select(r.itemCols...).
		From(itemTable).
		Where(squirrel.Eq{"invoice_id": invoiceIDs}).
		OrderBy("invoice_id ASC", itemOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	return items, nil
}

// ReplaceItems deletes all items of the invoice and inserts the new set in one batch.
// It must run inside a transaction.
func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID id.ID, items []invoice.Item) error {
	deleteSQL, deleteArgs, err := r.Builder().
		Delete(itemTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	queries := []postgres.BatchQuery{{SQL: deleteSQL, Args: deleteArgs}}
	for _, it := range items {
		it.InvoiceID = invoiceID
		insertSQL, insertArgs, err := r.Builder().
			Insert(itemTable).
			SetMap(postgres.StructToMap(it)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: insertSQL, Args: insertArgs})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return postgres.MapError(err, "invoice item")
	}
	return nil
}

// UpdateItem writes the editable fields of one item.
func (r *InvoiceRepo) UpdateItem(ctx context.Context, item invoice.Item) error {
	sqlStr, args, err := r.Builder().
		Update(itemTable).
		Set("description", item.Description).
		Set("quantity", item.Quantity).
		Set("unit_price", item.UnitPrice).
		Set("amount", item.Amount).
		Set("is_overridden", item.IsOverridden).
		Set("override_reason", item.OverrideReason).
		Where(squirrel.Eq{"id": item.ID, "invoice_id": item.InvoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update invoice item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice item", item.ID.String())
	}
	return nil
}

// AdjustmentRepo implements invoice.AdjustmentRepository.
type AdjustmentRepo struct {
	*catalog_repo.BaseCatalogRepo[*invoice.Adjustment]
}

var _ invoice.AdjustmentRepository = (*AdjustmentRepo)(nil)

// NewAdjustmentRepo creates a new adjustment repository.
func NewAdjustmentRepo(txm *postgres.TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{catalog_repo.NewBaseCatalogRepo(
		txm,
		"invoice_adjustments",
		"adjustment",
		postgres.ExtractDBColumns[invoice.Adjustment](),
		func() *invoice.Adjustment { return &invoice.Adjustment{} },
	).WithDefaultOrder("created_at ASC")}
}

// Create inserts an adjustment, stamping created_at when unset.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *invoice.Adjustment) error {
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}
	return r.BaseCatalogRepo.Create(ctx, adj)
}

// ListByInvoice returns the adjustments of one invoice, oldest first.
func (r *AdjustmentRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*invoice.Adjustment, error) {
	return r.FindAll(ctx, r.Select().
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("created_at ASC", "id ASC"))
}
