// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Parsing helpers ---

func parseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewInvalidInput(field, "invalid "+field+" format")
	}
	return parsed, nil
}

func parsePeriod(field, value string) (time.Time, error) {
	p, err := types.ParsePeriod(value)
	if err != nil {
		return time.Time{}, apperror.NewValidation(err.Error()).WithDetail("field", field)
	}
	return p, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := types.ParseDate(*value)
	if err != nil {
		return nil, apperror.NewValidation(err.Error()).WithDetail("field", field)
	}
	return &d, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := types.FormatDate(*t)
	return &s
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
