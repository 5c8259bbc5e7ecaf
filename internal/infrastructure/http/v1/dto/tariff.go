package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/tariff"
)

// TariffRequest is the request body for creating or updating a tariff.
type TariffRequest struct {
	UtilityType     domain.UtilityType `json:"utilityType" binding:"required"`
	FlatRatePerUnit decimal.Decimal    `json:"flatRatePerUnit"`
	EffectiveFrom   string             `json:"effectiveFrom" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *TariffRequest) ToEntity() (*tariff.Tariff, error) {
	t := tariff.NewTariff(r.UtilityType, r.FlatRatePerUnit, time.Time{})
	if err := r.ApplyTo(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyTo applies update DTO to existing entity.
func (r *TariffRequest) ApplyTo(t *tariff.Tariff) error {
	from, err := types.ParseDate(r.EffectiveFrom)
	if err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("field", "effectiveFrom")
	}
	t.UtilityType = r.UtilityType
	t.FlatRatePerUnit = r.FlatRatePerUnit
	t.EffectiveFrom = from
	return nil
}

// TariffResponse is the response body for a tariff.
type TariffResponse struct {
	ID              string             `json:"id"`
	UtilityType     domain.UtilityType `json:"utilityType"`
	FlatRatePerUnit decimal.Decimal    `json:"flatRatePerUnit"`
	EffectiveFrom   string             `json:"effectiveFrom"`
}

// FromTariff creates response DTO from domain entity.
func FromTariff(t *tariff.Tariff) *TariffResponse {
	return &TariffResponse{
		ID:              t.ID.String(),
		UtilityType:     t.UtilityType,
		FlatRatePerUnit: t.FlatRatePerUnit,
		EffectiveFrom:   types.FormatDate(t.EffectiveFrom),
	}
}
