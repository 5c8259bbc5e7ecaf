package handlers

import (
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// TariffHTTPHandler serves /tariffs.
type TariffHTTPHandler = CatalogHandler[
	*tariff.Tariff,
	dto.TariffRequest,
	dto.TariffRequest,
]

// NewTariffHandler creates the tariffs handler.
func NewTariffHandler(base *BaseHandler, service *tariff.Service) *TariffHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*tariff.Tariff,
		dto.TariffRequest,
		dto.TariffRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "tariff",
		Filters: []QueryFilter{
			ValueFilter("utilityType", "utility_type", utilityValue),
		},
		MapCreateDTO: func(req dto.TariffRequest) (*tariff.Tariff, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.TariffRequest, existing *tariff.Tariff) (*tariff.Tariff, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(t *tariff.Tariff) any {
			return dto.FromTariff(t)
		},
	})
}
