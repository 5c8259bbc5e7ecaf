package handlers

import (
	"strings"

	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// MeterHTTPHandler serves /meters.
type MeterHTTPHandler = CatalogHandler[
	*meter.Meter,
	dto.CreateMeterRequest,
	dto.UpdateMeterRequest,
]

func utilityValue(s string) any {
	return domain.UtilityType(strings.ToUpper(s))
}

// NewMeterHandler creates the meters handler.
func NewMeterHandler(base *BaseHandler, service *meter.Service) *MeterHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*meter.Meter,
		dto.CreateMeterRequest,
		dto.UpdateMeterRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "meter",
		Filters: []QueryFilter{
			IDFilter("shopId", "shop_id"),
			ValueFilter("utilityType", "utility_type", utilityValue),
			BoolFilter("active", "active"),
		},
		MapCreateDTO: func(req dto.CreateMeterRequest) (*meter.Meter, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMeterRequest, existing *meter.Meter) (*meter.Meter, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(m *meter.Meter) any {
			return dto.FromMeter(m)
		},
	})
}
