package handlers

import (
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// MarketHTTPHandler serves /markets.
type MarketHTTPHandler = CatalogHandler[
	*market.Market,
	dto.CreateMarketRequest,
	dto.UpdateMarketRequest,
]

// NewMarketHandler creates the markets handler.
func NewMarketHandler(base *BaseHandler, service *market.Service) *MarketHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*market.Market,
		dto.CreateMarketRequest,
		dto.UpdateMarketRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "market",
		Filters: []QueryFilter{
			BoolFilter("active", "active"),
		},
		MapCreateDTO: func(req dto.CreateMarketRequest) (*market.Market, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateMarketRequest, existing *market.Market) (*market.Market, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(m *market.Market) any {
			return dto.FromMarket(m)
		},
	})
}
