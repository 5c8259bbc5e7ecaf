package handlers

import (
	"github.com/gin-gonic/gin"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/reports"
	"marketbill/internal/infrastructure/export"
	"marketbill/internal/infrastructure/http/v1/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	markets *market.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service, markets *market.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		markets:     markets,
	}
}

func (h *ReportsHandler) scope(c *gin.Context, req dto.ReportScopeRequest) (id.ID, bool) {
	return h.ParseID(c, "marketId", req.MarketID)
}

// MarketSummary handles GET /reports/market-summary
func (h *ReportsHandler) MarketSummary(c *gin.Context) {
	var req dto.ReportScopeRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.scope(c, req)
	if !ok {
		return
	}

	summary, err := h.service.MarketSummary(c.Request.Context(), marketID, req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// ReadingStatus handles GET /reports/reading-status
func (h *ReportsHandler) ReadingStatus(c *gin.Context) {
	var req dto.ReportScopeRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.scope(c, req)
	if !ok {
		return
	}

	rows, err := h.service.ReadingStatus(c.Request.Context(), marketID, req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}
	if rows == nil {
		rows = []reports.ReadingStatus{}
	}

	h.OK(c, gin.H{"items": rows})
}

// InvoiceTable handles GET /reports/invoices
func (h *ReportsHandler) InvoiceTable(c *gin.Context) {
	var req dto.InvoiceTableRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.scope(c, req.ReportScopeRequest)
	if !ok {
		return
	}

	page, err := h.service.InvoiceTable(c.Request.Context(), marketID, req.Period, reports.InvoiceTableFilter{
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, page)
}

// InvoiceTableXLSX handles GET /reports/invoices.xlsx: every invoice of the month
// plus the market summary as a workbook.
func (h *ReportsHandler) InvoiceTableXLSX(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReportScopeRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.scope(c, req)
	if !ok {
		return
	}

	summary, err := h.service.MarketSummary(ctx, marketID, req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}
	mk, err := h.markets.GetByID(ctx, marketID)
	if err != nil {
		h.Error(c, err)
		return
	}

	var rows []reports.InvoiceRow
	for offset := 0; ; {
		page, err := h.service.InvoiceTable(ctx, marketID, req.Period, reports.InvoiceTableFilter{
			Limit:  maxLimit,
			Offset: offset,
		})
		if err != nil {
			h.Error(c, err)
			return
		}
		rows = append(rows, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalCount {
			break
		}
	}

	period := summary.Period
	data, err := export.InvoiceTableXLSX(mk.Name, period, rows, summary)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.Attachment(c, "invoices-"+period+".xlsx", xlsxContentType, data)
}
