package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"marketbill/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_shops_market_code"})
	assert.True(t, apperror.IsDuplicate(MapError(unique, "shop")))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_meters_shop"}
	appErr, ok := apperror.AsAppError(MapError(fk, "shop"))
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	check := &pgconn.PgError{Code: "23514", ConstraintName: "chk_readings_order"}
	appErr, ok = apperror.AsAppError(MapError(check, "reading"))
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	plain := errors.New("connection refused")
	assert.Same(t, plain, MapError(plain, "shop"))
}
