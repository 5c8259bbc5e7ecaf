package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"marketbill/internal/core/apperror"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/infrastructure/export"
	"marketbill/internal/infrastructure/http/v1/dto"
)

var invoiceFilters = []QueryFilter{
	PeriodFilter("period", "period"),
	IDFilter("shopId", "shop_id"),
	ValueFilter("status", "status", func(s string) any { return strings.ToUpper(s) }),
	BoolFilter("locked", "locked"),
}

// InvoiceHandler serves /invoices.
type InvoiceHandler struct {
	*BaseHandler
	service  *invoice.Service
	shops    *shop.Service
	markets  *market.Service
	currency string
}

// NewInvoiceHandler creates the invoices handler. Shops and markets are read for PDF export.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, shops *shop.Service, markets *market.Service, currency string) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		shops:       shops,
		markets:     markets,
		currency:    currency,
	}
}

// List handles GET /invoices?period=&shopId=&status=&locked=.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, ok := h.ListQuery(c, invoiceFilters)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.InvoiceResponse, len(result.Items))
	for i, inv := range result.Items {
		items[i] = dto.FromInvoice(inv, nil)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id. The response includes the items.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	inv, err := h.service.Get(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv.Invoice, inv.Items))
}

// Items handles GET /invoices/:id/items.
func (h *InvoiceHandler) Items(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	items, err := h.service.Items(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// Lock handles POST /invoices/:id/lock.
func (h *InvoiceHandler) Lock(c *gin.Context) {
	h.setLocked(c, true)
}

// Unlock handles POST /invoices/:id/unlock.
func (h *InvoiceHandler) Unlock(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *InvoiceHandler) setLocked(c *gin.Context, locked bool) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	var (
		inv *invoice.Invoice
		err error
	)
	if locked {
		inv, err = h.service.Lock(c.Request.Context(), invoiceID)
	} else {
		inv, err = h.service.Unlock(c.Request.Context(), invoiceID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv, nil))
}

// SetStatus handles PUT /invoices/:id/status.
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.SetStatus(c.Request.Context(), invoiceID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv, nil))
}

// OverrideItem handles POST /invoices/:id/items/:itemType/override.
func (h *InvoiceHandler) OverrideItem(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	itemType := domain.ChargeType(strings.ToUpper(c.Param("itemType")))
	if err := itemType.Validate(); err != nil {
		h.Error(c, apperror.NewInvalidInput("itemType", err.Error()))
		return
	}

	var req dto.OverrideItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.OverrideItem(c.Request.Context(), invoiceID, itemType, req.Amount, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv.Invoice, inv.Items))
}

// ListAdjustments handles GET /invoices/:id/adjustments.
func (h *InvoiceHandler) ListAdjustments(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	adjustments, err := h.service.ListAdjustments(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if adjustments == nil {
		adjustments = []*invoice.Adjustment{}
	}

	h.OK(c, gin.H{"items": adjustments})
}

// AddAdjustment handles POST /invoices/:id/adjustments.
func (h *InvoiceHandler) AddAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	adj, err := req.ToEntity(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.AddAdjustment(c.Request.Context(), adj); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, adj)
}

// DeleteAdjustment handles DELETE /invoices/:id/adjustments/:adjustmentId.
func (h *InvoiceHandler) DeleteAdjustment(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}
	adjustmentID, ok := h.ParseID(c, "adjustmentId", c.Param("adjustmentId"))
	if !ok {
		return
	}

	if err := h.service.DeleteAdjustment(c.Request.Context(), invoiceID, adjustmentID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// PDF handles GET /invoices/:id/pdf.
func (h *InvoiceHandler) PDF(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	inv, err := h.service.Get(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	sh, err := h.shops.GetByID(ctx, inv.ShopID)
	if err != nil {
		h.Error(c, err)
		return
	}
	mk, err := h.markets.GetByID(ctx, sh.MarketID)
	if err != nil {
		h.Error(c, err)
		return
	}
	adjustments, err := h.service.ListAdjustments(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	data, err := export.InvoicePDF(export.InvoiceDocument{
		Invoice:     inv.Invoice,
		Items:       inv.Items,
		Adjustments: adjustments,
		Shop:        sh,
		Market:      mk,
		Currency:    h.currency,
	})
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.Attachment(c, inv.Number()+".pdf", "application/pdf", data)
}
