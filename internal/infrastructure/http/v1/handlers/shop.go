package handlers

import (
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// ShopHTTPHandler serves /shops.
type ShopHTTPHandler = CatalogHandler[
	*shop.Shop,
	dto.CreateShopRequest,
	dto.UpdateShopRequest,
]

// NewShopHandler creates the shops handler.
func NewShopHandler(base *BaseHandler, service *shop.Service) *ShopHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*shop.Shop,
		dto.CreateShopRequest,
		dto.UpdateShopRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "shop",
		Filters: []QueryFilter{
			IDFilter("marketId", "market_id"),
			ValueFilter("floor", "floor", func(s string) any { return s }),
			BoolFilter("active", "active"),
		},
		MapCreateDTO: func(req dto.CreateShopRequest) (*shop.Shop, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateShopRequest, existing *shop.Shop) (*shop.Shop, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(sh *shop.Shop) any {
			return dto.FromShop(sh)
		},
	})
}
