// Package tariff provides flat per-unit utility tariffs.
package tariff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
)

// Tariff is a flat rate per unit of a utility, valid from a date.
// (utility, effectiveFrom) is unique.
type Tariff struct {
	entity.BaseEntity

	UtilityType     domain.UtilityType `db:"utility_type" json:"utilityType"`
	FlatRatePerUnit decimal.Decimal    `db:"flat_rate_per_unit" json:"flatRatePerUnit"`
	EffectiveFrom   time.Time          `db:"effective_from" json:"effectiveFrom"`
}

// NewTariff creates a tariff effective from the given date.
func NewTariff(utility domain.UtilityType, rate decimal.Decimal, effectiveFrom time.Time) *Tariff {
	return &Tariff{
		BaseEntity:      entity.NewBaseEntity(),
		UtilityType:     utility,
		FlatRatePerUnit: rate,
		EffectiveFrom:   effectiveFrom,
	}
}

// Validate implements entity.Validatable interface.
func (t *Tariff) Validate(ctx context.Context) error {
	if err := t.UtilityType.Validate(); err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("field", "utilityType")
	}
	if t.FlatRatePerUnit.IsNegative() {
		return apperror.NewValidation("flatRatePerUnit cannot be negative").WithDetail("field", "flatRatePerUnit")
	}
	if t.EffectiveFrom.IsZero() {
		return apperror.NewValidation("effectiveFrom is required").WithDetail("field", "effectiveFrom")
	}
	t.EffectiveFrom = time.Date(t.EffectiveFrom.Year(), t.EffectiveFrom.Month(), t.EffectiveFrom.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// String renders the tariff for logs.
func (t *Tariff) String() string {
	return string(t.UtilityType) + "@" + t.FlatRatePerUnit.String() + " from " + types.FormatDate(t.EffectiveFrom)
}
