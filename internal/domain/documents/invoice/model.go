// Package invoice provides shop invoices, their items and manual adjustments,
// together with the materializer that writes billing results.
package invoice

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
)

// StatusUnpaid is the status of every freshly created invoice.
const StatusUnpaid = "UNPAID"

// Invoice is the bill of one shop for one month. (period, shop) is unique.
type Invoice struct {
	entity.BaseEntity

	Period time.Time       `db:"period" json:"period"`
	ShopID id.ID           `db:"shop_id" json:"shopId"`
	Total  decimal.Decimal `db:"total" json:"total"`

	// Status is free text owned by accounting (UNPAID, PAID, ...).
	Status string `db:"status" json:"status"`

	// Locked invoices are never rewritten unless a run is forced.
	Locked bool `db:"locked" json:"locked"`

	// Revision starts at 1 and grows by one on every recompute.
	Revision int `db:"revision" json:"revision"`

	// Meta is the JSON encoded Basis of the last computation.
	Meta json.RawMessage `db:"meta" json:"meta,omitempty"`
}

// PeriodLabel renders the period as YYYY-MM.
func (inv *Invoice) PeriodLabel() string {
	return types.FormatPeriod(inv.Period)
}

// Number is the human readable invoice reference printed on exports.
func (inv *Invoice) Number() string {
	return "INV-" + strings.ReplaceAll(inv.PeriodLabel(), "-", "") + "-" + inv.ID.String()[:8]
}

// Basis decodes Meta. An empty Meta yields a zero Basis.
func (inv *Invoice) Basis() (Basis, error) {
	var b Basis
	if len(inv.Meta) == 0 {
		return b, nil
	}
	err := json.Unmarshal(inv.Meta, &b)
	return b, err
}

// Item is one line of an invoice. (invoice, itemType) is unique.
type Item struct {
	ID          id.ID             `db:"id" json:"id"`
	InvoiceID   id.ID             `db:"invoice_id" json:"invoiceId"`
	ItemType    domain.ChargeType `db:"item_type" json:"itemType"`
	Description string            `db:"description" json:"description"`
	Quantity    decimal.Decimal   `db:"quantity" json:"quantity"`
	Unit        string            `db:"unit" json:"unit"`
	UnitPrice   decimal.Decimal   `db:"unit_price" json:"unitPrice"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`

	IsOverridden   bool   `db:"is_overridden" json:"isOverridden"`
	OverrideReason string `db:"override_reason" json:"overrideReason,omitempty"`
}

// Line is a computed charge, the input of the materializer.
type Line struct {
	Type        domain.ChargeType
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Basis records what an invoice was computed from.
type Basis struct {
	MarketID        id.ID                        `json:"marketId"`
	ReadingID       id.ID                        `json:"readingId"`
	MeterID         id.ID                        `json:"meterId"`
	TariffID        id.ID                        `json:"tariffId"`
	Consumption     decimal.Decimal              `json:"consumption"`
	ElectricityRate decimal.Decimal              `json:"electricityRate"`
	ShopArea        decimal.Decimal              `json:"shopArea"`
	TotalArea       decimal.Decimal              `json:"totalArea"`
	AreaRates       map[domain.ChargeType]string `json:"areaRates,omitempty"`
	ComputedAt      time.Time                    `json:"computedAt"`
}

// SumItems totals item amounts.
func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// AmountOf returns the amount of the item of the given type, zero when absent.
func AmountOf(items []Item, t domain.ChargeType) decimal.Decimal {
	for _, it := range items {
		if it.ItemType == t {
			return it.Amount
		}
	}
	return decimal.Zero
}

// HasOverride reports whether any item was edited by hand.
func HasOverride(items []Item) bool {
	for _, it := range items {
		if it.IsOverridden {
			return true
		}
	}
	return false
}

// Adjustment is a manual credit or debit recorded against an invoice.
// Adjustments are informational; billing never reads them.
type Adjustment struct {
	ID        id.ID              `db:"id" json:"id"`
	InvoiceID id.ID              `db:"invoice_id" json:"invoiceId"`
	ItemType  *domain.ChargeType `db:"item_type" json:"itemType,omitempty"`
	Label     string             `db:"label" json:"label"`
	Amount    decimal.Decimal    `db:"amount" json:"amount"`
	CreatedBy string             `db:"created_by" json:"createdBy"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
}

// Validate implements entity.Validatable interface.
func (a *Adjustment) Validate(ctx context.Context) error {
	a.Label = strings.TrimSpace(a.Label)
	if id.IsNil(a.InvoiceID) {
		return apperror.NewValidation("invoiceId is required").WithDetail("field", "invoiceId")
	}
	if a.Label == "" {
		return apperror.NewValidation("label is required").WithDetail("field", "label")
	}
	if a.Amount.IsZero() {
		return apperror.NewValidation("amount cannot be zero").WithDetail("field", "amount")
	}
	if a.ItemType != nil {
		if err := a.ItemType.Validate(); err != nil {
			return apperror.NewValidation(err.Error()).WithDetail("field", "itemType")
		}
	}
	return nil
}
