package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	wrapped := fmt.Errorf("load shops: %w", err)

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(wrapped))
}

func TestAppError_Helpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		status    int
	}{
		{"not found", NewNotFound("shop", "42"), true, false, http.StatusNotFound},
		{"duplicate", NewDuplicate("shop", "code", "A-1"), false, true, http.StatusConflict},
		{"locked invoice", NewInvoiceLocked("7"), false, false, http.StatusUnprocessableEntity},
		{"plain error", errors.New("boom"), false, false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicate(tt.err))
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("bad period").WithDetail("period", "2025-13")

	assert.Equal(t, "2025-13", err.Details["period"])
	assert.Equal(t, "VALIDATION_ERROR: bad period", err.Error())
}
