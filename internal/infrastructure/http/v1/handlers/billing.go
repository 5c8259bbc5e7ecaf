package handlers

import (
	"github.com/gin-gonic/gin"

	"marketbill/internal/domain/billing"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// BillingHandler serves /billing.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
	history billing.RunHistory
}

// NewBillingHandler creates the billing handler. history may be nil.
func NewBillingHandler(base *BaseHandler, service *billing.Service, history billing.RunHistory) *BillingHandler {
	return &BillingHandler{BaseHandler: base, service: service, history: history}
}

// Compute handles POST /billing/compute?marketId=&period=&force=.
// A run that stops on a precondition still answers 200 with success=false.
func (h *BillingHandler) Compute(c *gin.Context) {
	var req dto.ComputeRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.ParseID(c, "marketId", req.MarketID)
	if !ok {
		return
	}

	summary, err := h.service.Run(c.Request.Context(), billing.RunRequest{
		MarketID: marketID,
		Period:   req.Period,
		Force:    req.Force,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// Runs handles GET /billing/runs?marketId=&limit=.
func (h *BillingHandler) Runs(c *gin.Context) {
	var req dto.RunHistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	marketID, ok := h.ParseID(c, "marketId", req.MarketID)
	if !ok {
		return
	}

	runs := []billing.RunRecord{}
	if h.history != nil {
		var err error
		runs, err = h.history.History(c.Request.Context(), marketID, req.Limit)
		if err != nil {
			h.Error(c, err)
			return
		}
	}

	h.OK(c, gin.H{"items": runs})
}
