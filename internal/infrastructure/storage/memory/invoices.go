package memory

import (
	"context"
	"sort"
	"time"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/documents/invoice"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	t *table[invoice.Invoice]
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepo {
	return &InvoiceRepo{t: &table[invoice.Invoice]{
		store: s,
		name:  "invoices",
		rows:  func(st *state) map[id.ID]*invoice.Invoice { return st.invoices },
		idOf:  func(inv *invoice.Invoice) id.ID { return inv.ID },
		fields: map[string]func(*invoice.Invoice) any{
			"period":  func(inv *invoice.Invoice) any { return inv.Period },
			"shop_id": func(inv *invoice.Invoice) any { return inv.ShopID },
			"status":  func(inv *invoice.Invoice) any { return inv.Status },
			"locked":  func(inv *invoice.Invoice) any { return inv.Locked },
		},
		unique: func(st *state, inv *invoice.Invoice) error {
			for _, other := range st.invoices {
				if other.ID != inv.ID && other.ShopID == inv.ShopID && other.Period.Equal(inv.Period) {
					return apperror.NewDuplicate("invoice", "period", inv.PeriodLabel())
				}
			}
			return nil
		},
	}}
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	inv, err := r.t.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return inv, nil
}

func (r *InvoiceRepo) GetByPeriodAndShop(ctx context.Context, period time.Time, shopID id.ID) (*invoice.Invoice, error) {
	return r.t.first(func(inv *invoice.Invoice) bool {
		return inv.ShopID == shopID && inv.Period.Equal(period)
	}, types.FormatPeriod(period))
}

func (r *InvoiceRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	return r.t.List(ctx, filter)
}

func (r *InvoiceRepo) ListByPeriod(ctx context.Context, period time.Time, shopIDs []id.ID) ([]*invoice.Invoice, error) {
	return r.t.find(func(inv *invoice.Invoice) bool {
		return inv.Period.Equal(period) && containsID(shopIDs, inv.ShopID)
	}), nil
}

func (r *InvoiceRepo) CountLocked(ctx context.Context, period time.Time, shopIDs []id.ID) (int, error) {
	rows := r.t.find(func(inv *invoice.Invoice) bool {
		return inv.Locked && inv.Period.Equal(period) && containsID(shopIDs, inv.ShopID)
	})
	return len(rows), nil
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.t.Create(ctx, inv)
}

func (r *InvoiceRepo) UpdateComputed(ctx context.Context, inv *invoice.Invoice) error {
	return r.t.mutate(inv.ID, func(stored *invoice.Invoice) {
		stored.Total = inv.Total
		stored.Revision = inv.Revision
		stored.Meta = append([]byte(nil), inv.Meta...)
		stored.UpdatedAt = inv.UpdatedAt
	})
}

func (r *InvoiceRepo) SetLocked(ctx context.Context, invoiceID id.ID, locked bool) error {
	return r.t.mutate(invoiceID, func(inv *invoice.Invoice) {
		inv.Locked = locked
		inv.Touch()
	})
}

func (r *InvoiceRepo) SetStatus(ctx context.Context, invoiceID id.ID, status string) error {
	return r.t.mutate(invoiceID, func(inv *invoice.Invoice) {
		inv.Status = status
		inv.Touch()
	})
}

func (r *InvoiceRepo) Items(ctx context.Context, invoiceID id.ID) ([]invoice.Item, error) {
	var out []invoice.Item
	r.t.store.read(func(st *state) {
		out = append(out, st.items[invoiceID]...)
	})
	sortItems(out)
	return out, nil
}

func (r *InvoiceRepo) ItemsOf(ctx context.Context, invoiceIDs []id.ID) ([]invoice.Item, error) {
	var out []invoice.Item
	r.t.store.read(func(st *state) {
		for _, invID := range invoiceIDs {
			out = append(out, st.items[invID]...)
		}
	})
	sortItems(out)
	return out, nil
}

func (r *InvoiceRepo) ReplaceItems(ctx context.Context, invoiceID id.ID, items []invoice.Item) error {
	return r.t.store.write(func(st *state) error {
		if _, ok := st.invoices[invoiceID]; !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		seen := make(map[domain.ChargeType]bool, len(items))
		for _, it := range items {
			if seen[it.ItemType] {
				return apperror.NewDuplicate("invoice item", "itemType", string(it.ItemType))
			}
			seen[it.ItemType] = true
		}
		st.items[invoiceID] = append([]invoice.Item(nil), items...)
		return nil
	})
}

func (r *InvoiceRepo) UpdateItem(ctx context.Context, item invoice.Item) error {
	return r.t.store.write(func(st *state) error {
		current := st.items[item.InvoiceID]
		next := make([]invoice.Item, len(current))
		copy(next, current)
		for i := range next {
			if next[i].ID == item.ID {
				next[i] = item
				st.items[item.InvoiceID] = next
				return nil
			}
		}
		return apperror.NewNotFound("invoice item", item.ID.String())
	})
}

// --- Adjustments ---

// AdjustmentRepo implements invoice.AdjustmentRepository.
type AdjustmentRepo struct {
	t *table[invoice.Adjustment]
}

var _ invoice.AdjustmentRepository = (*AdjustmentRepo)(nil)

// Adjustments returns the adjustment repository.
func (s *Store) Adjustments() *AdjustmentRepo {
	return &AdjustmentRepo{t: &table[invoice.Adjustment]{
		store: s,
		name:  "invoice_adjustments",
		rows:  func(st *state) map[id.ID]*invoice.Adjustment { return st.adjustments },
		idOf:  func(a *invoice.Adjustment) id.ID { return a.ID },
	}}
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *invoice.Adjustment) error {
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}
	return r.t.Create(ctx, adj)
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, adjustmentID id.ID) (*invoice.Adjustment, error) {
	return r.t.GetByID(ctx, adjustmentID)
}

func (r *AdjustmentRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*invoice.Adjustment, error) {
	return r.t.find(func(a *invoice.Adjustment) bool { return a.InvoiceID == invoiceID }), nil
}

func (r *AdjustmentRepo) Delete(ctx context.Context, adjustmentID id.ID) error {
	return r.t.Delete(ctx, adjustmentID)
}

// --- helpers ---

var chargeOrder = map[domain.ChargeType]int{
	domain.ChargeElectricity: 0,
	domain.ChargeAC:          1,
	domain.ChargeService:     2,
	domain.ChargeGenerator:   3,
	domain.ChargeSpecial:     4,
}

func sortItems(items []invoice.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].InvoiceID != items[j].InvoiceID {
			return id.Less(items[i].InvoiceID, items[j].InvoiceID)
		}
		return chargeOrder[items[i].ItemType] < chargeOrder[items[j].ItemType]
	})
}

func sortDesc[E any](rows []*E, key func(*E) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool { return key(rows[i]).After(key(rows[j])) })
}
