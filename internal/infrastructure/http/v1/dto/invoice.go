package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/domain"
	"marketbill/internal/domain/documents/invoice"
)

// SetStatusRequest changes the payment status of an invoice.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OverrideItemRequest replaces the amount of one invoice item.
type OverrideItemRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required"`
}

// CreateAdjustmentRequest records a manual credit or debit.
type CreateAdjustmentRequest struct {
	ItemType *domain.ChargeType `json:"itemType"`
	Label    string             `json:"label" binding:"required"`
	Amount   decimal.Decimal    `json:"amount"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAdjustmentRequest) ToEntity(invoiceID string) (*invoice.Adjustment, error) {
	parsed, err := parseID("id", invoiceID)
	if err != nil {
		return nil, err
	}
	return &invoice.Adjustment{
		InvoiceID: parsed,
		ItemType:  r.ItemType,
		Label:     r.Label,
		Amount:    r.Amount,
	}, nil
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Period    string          `json:"period"`
	ShopID    string          `json:"shopId"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Locked    bool            `json:"locked"`
	Revision  int             `json:"revision"`
	Basis     *invoice.Basis  `json:"basis,omitempty"`
	Items     []invoice.Item  `json:"items,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// FromInvoice creates response DTO from domain entity.
// A Meta that cannot be decoded is left out of the response.
func FromInvoice(inv *invoice.Invoice, items []invoice.Item) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:        inv.ID.String(),
		Number:    inv.Number(),
		Period:    inv.PeriodLabel(),
		ShopID:    inv.ShopID.String(),
		Total:     inv.Total,
		Status:    inv.Status,
		Locked:    inv.Locked,
		Revision:  inv.Revision,
		Items:     items,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
	if len(inv.Meta) > 0 {
		if b, err := inv.Basis(); err == nil {
			resp.Basis = &b
		}
	}
	return resp
}
