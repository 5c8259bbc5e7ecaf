package handlers

import (
	"marketbill/internal/domain/documents/reading"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// ReadingHTTPHandler serves /readings.
type ReadingHTTPHandler = CatalogHandler[
	*reading.Reading,
	dto.CreateReadingRequest,
	dto.UpdateReadingRequest,
]

// NewReadingHandler creates the readings handler.
func NewReadingHandler(base *BaseHandler, service *reading.Service) *ReadingHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*reading.Reading,
		dto.CreateReadingRequest,
		dto.UpdateReadingRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "reading",
		Filters: []QueryFilter{
			IDFilter("meterId", "meter_id"),
			PeriodFilter("period", "period"),
		},
		MapCreateDTO: func(req dto.CreateReadingRequest) (*reading.Reading, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateReadingRequest, existing *reading.Reading) (*reading.Reading, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(rd *reading.Reading) any {
			return dto.FromReading(rd)
		},
	})
}
