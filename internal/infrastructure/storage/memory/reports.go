package memory

import (
	"context"
	"sort"
	"time"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo {
	return &ReportRepo{store: s}
}

type invoiceWithItems struct {
	inv   *invoice.Invoice
	shop  *shop.Shop
	items []invoice.Item
}

// collect returns the invoices of the market's shops for one month, ordered by shop code.
func (r *ReportRepo) collect(marketID id.ID, period time.Time, status string) []invoiceWithItems {
	var out []invoiceWithItems
	r.store.read(func(st *state) {
		for _, inv := range st.invoices {
			sh, ok := st.shops[inv.ShopID]
			if !ok || sh.MarketID != marketID || !inv.Period.Equal(period) {
				continue
			}
			if status != "" && inv.Status != status {
				continue
			}
			out = append(out, invoiceWithItems{
				inv:   copyOf(inv),
				shop:  copyOf(sh),
				items: append([]invoice.Item(nil), st.items[inv.ID]...),
			})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].shop.Code != out[j].shop.Code {
			return out[i].shop.Code < out[j].shop.Code
		}
		return id.Less(out[i].inv.ID, out[j].inv.ID)
	})
	return out
}

// KPIs aggregates invoices of the market's shops for one month.
func (r *ReportRepo) KPIs(ctx context.Context, marketID id.ID, period time.Time) (reports.KPIs, error) {
	var k reports.KPIs
	for _, row := range r.collect(marketID, period, "") {
		k.InvoiceCount++
		k.TotalAmount = k.TotalAmount.Add(row.inv.Total)
		for _, it := range row.items {
			switch it.ItemType {
			case domain.ChargeElectricity:
				k.ElectricityAmount = k.ElectricityAmount.Add(it.Amount)
				k.ElectricityUnits = k.ElectricityUnits.Add(it.Quantity)
			case domain.ChargeAC:
				k.AcCost = k.AcCost.Add(it.Amount)
			case domain.ChargeService:
				k.ServiceCost = k.ServiceCost.Add(it.Amount)
			case domain.ChargeGenerator:
				k.GeneratorCost = k.GeneratorCost.Add(it.Amount)
			case domain.ChargeSpecial:
				k.SpecialCost = k.SpecialCost.Add(it.Amount)
			}
		}
	}
	return k, nil
}

// InvoiceTable returns one page of invoice rows.
func (r *ReportRepo) InvoiceTable(ctx context.Context, filter reports.InvoiceTableFilter) (*reports.InvoicePage, error) {
	all := r.collect(filter.MarketID, filter.Period, filter.Status)

	page := &reports.InvoicePage{
		Items:      []reports.InvoiceRow{},
		TotalCount: len(all),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset >= len(all) {
		return page, nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}

	for _, row := range all[filter.Offset:end] {
		page.Items = append(page.Items, reports.InvoiceRow{
			InvoiceID:         row.inv.ID,
			ShopID:            row.shop.ID,
			ShopCode:          row.shop.Code,
			ShopName:          row.shop.Name,
			ElectricityAmount: invoice.AmountOf(row.items, domain.ChargeElectricity),
			AcAmount:          invoice.AmountOf(row.items, domain.ChargeAC),
			ServiceAmount:     invoice.AmountOf(row.items, domain.ChargeService),
			GeneratorAmount:   invoice.AmountOf(row.items, domain.ChargeGenerator),
			SpecialAmount:     invoice.AmountOf(row.items, domain.ChargeSpecial),
			Total:             row.inv.Total,
			Status:            row.inv.Status,
			Locked:            row.inv.Locked,
			Revision:          row.inv.Revision,
			HasOverride:       invoice.HasOverride(row.items),
		})
	}
	return page, nil
}
