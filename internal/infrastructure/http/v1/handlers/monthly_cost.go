package handlers

import (
	"github.com/gin-gonic/gin"

	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// MonthlyCostHandler serves /monthly-costs: CRUD plus lock and unlock.
type MonthlyCostHandler struct {
	*CatalogHandler[*monthlycost.MonthlyCost, dto.CreateMonthlyCostRequest, dto.UpdateMonthlyCostRequest]
	costs *monthlycost.Service
}

// NewMonthlyCostHandler creates the monthly costs handler.
func NewMonthlyCostHandler(base *BaseHandler, service *monthlycost.Service) *MonthlyCostHandler {
	crud := NewCatalogHandler(base, CatalogHandlerConfig[
		*monthlycost.MonthlyCost,
		dto.CreateMonthlyCostRequest,
		dto.UpdateMonthlyCostRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "monthly cost",
		Filters: []QueryFilter{
			IDFilter("marketId", "market_id"),
			PeriodFilter("period", "period"),
			BoolFilter("locked", "locked"),
		},
		MapCreateDTO: func(req dto.CreateMonthlyCostRequest) (*monthlycost.MonthlyCost, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMonthlyCostRequest, existing *monthlycost.MonthlyCost) (*monthlycost.MonthlyCost, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(c *monthlycost.MonthlyCost) any {
			return dto.FromMonthlyCost(c)
		},
	})
	return &MonthlyCostHandler{CatalogHandler: crud, costs: service}
}

// Lock handles POST /monthly-costs/:id/lock.
func (h *MonthlyCostHandler) Lock(c *gin.Context) {
	h.setLocked(c, true)
}

// Unlock handles POST /monthly-costs/:id/unlock.
func (h *MonthlyCostHandler) Unlock(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *MonthlyCostHandler) setLocked(c *gin.Context, locked bool) {
	costID, ok := h.PathID(c)
	if !ok {
		return
	}

	var (
		cost *monthlycost.MonthlyCost
		err  error
	)
	if locked {
		cost, err = h.costs.Lock(c.Request.Context(), costID)
	} else {
		cost, err = h.costs.Unlock(c.Request.Context(), costID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMonthlyCost(cost))
}
