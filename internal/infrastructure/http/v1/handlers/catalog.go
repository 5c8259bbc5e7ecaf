// Package handlers provides HTTP request handlers.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/infrastructure/http/v1/dto"
)

// QueryFilter maps a query parameter onto an equality filter of ListFilter.
type QueryFilter struct {
	Param  string
	Column string
	Parse  func(string) (any, error)
}

// IDFilter filters by an id column.
func IDFilter(param, column string) QueryFilter {
	return QueryFilter{Param: param, Column: column, Parse: func(s string) (any, error) {
		return id.Parse(s)
	}}
}

// PeriodFilter filters by a month column; the value is "YYYY-MM" or "YYYY-MM-DD".
func PeriodFilter(param, column string) QueryFilter {
	return QueryFilter{Param: param, Column: column, Parse: func(s string) (any, error) {
		return types.ParsePeriod(s)
	}}
}

// BoolFilter filters by a boolean column.
func BoolFilter(param, column string) QueryFilter {
	return QueryFilter{Param: param, Column: column, Parse: func(s string) (any, error) {
		return strconv.ParseBool(s)
	}}
}

// ValueFilter filters by a text column converted with conv.
func ValueFilter(param, column string, conv func(string) any) QueryFilter {
	return QueryFilter{Param: param, Column: column, Parse: func(s string) (any, error) {
		return conv(s), nil
	}}
}

// CatalogHandler provides generic HTTP handlers for reference entities.
type CatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    *domain.CatalogService[T]
	entityName string
	filters    []QueryFilter

	// Mapper functions
	mapCreateDTO func(dto CreateDTO) (T, error)
	mapUpdateDTO func(dto UpdateDTO, existing T) (T, error)
	mapToDTO     func(entity T) any
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service      *domain.CatalogService[T]
	EntityName   string
	Filters      []QueryFilter
	MapCreateDTO func(dto CreateDTO) (T, error)
	MapUpdateDTO func(dto UpdateDTO, existing T) (T, error)
	MapToDTO     func(entity T) any
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO, UpdateDTO],
) *CatalogHandler[T, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		filters:      cfg.Filters,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// ListQuery builds a ListFilter from search, paging and the given query filters.
func (h *BaseHandler) ListQuery(c *gin.Context, filters []QueryFilter) (domain.ListFilter, bool) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit, filter.Offset = h.Page(c)
	filter.OrderBy = c.Query("orderBy")
	filter.OnlyActive = c.Query("onlyActive") == "true"

	for _, f := range filters {
		raw := c.Query(f.Param)
		if raw == "" {
			continue
		}
		v, err := f.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewInvalidInput(f.Param, err.Error()))
			return filter, false
		}
		filter = filter.WithEquals(f.Column, v)
	}
	return filter, true
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	filter, ok := h.ListQuery(c, h.filters)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = h.mapToDTO(item)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.PathID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(entity))
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.mapCreateDTO(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.mapToDTO(entity))
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.mapUpdateDTO(req, existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(updated))
}

// Delete handles DELETE /{entity}/:id.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
