// Package reading provides monthly meter readings.
package reading

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
)

// Reading is the dial position of a meter for one billing month.
// (meter, period) is unique.
type Reading struct {
	entity.BaseEntity

	MeterID id.ID `db:"meter_id" json:"meterId"`

	// Period is the first day of the billed month.
	Period time.Time `db:"period" json:"period"`

	PrevReading decimal.Decimal `db:"prev_reading" json:"prevReading"`
	CurrReading decimal.Decimal `db:"curr_reading" json:"currReading"`

	// Multiplier zero means "inherit from meter" and is resolved on save.
	Multiplier decimal.Decimal `db:"multiplier" json:"multiplier"`

	// Consumption = (CurrReading - PrevReading) * Multiplier, derived on save.
	Consumption decimal.Decimal `db:"consumption" json:"consumption"`

	ReadAt *time.Time `db:"read_at" json:"readAt,omitempty"`
}

// NewReading creates a reading for the month containing period.
func NewReading(meterID id.ID, period time.Time, prev, curr decimal.Decimal) *Reading {
	r := &Reading{
		BaseEntity:  entity.NewBaseEntity(),
		MeterID:     meterID,
		Period:      types.MonthStart(period),
		PrevReading: prev,
		CurrReading: curr,
	}
	r.Compute()
	return r
}

// Compute derives Consumption from the dial values.
func (r *Reading) Compute() {
	multiplier := r.Multiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	r.Consumption = r.CurrReading.Sub(r.PrevReading).Mul(multiplier)
}

// Validate implements entity.Validatable interface.
func (r *Reading) Validate(ctx context.Context) error {
	if id.IsNil(r.MeterID) {
		return apperror.NewValidation("meterId is required").WithDetail("field", "meterId")
	}
	if r.Period.IsZero() {
		return apperror.NewValidation("period is required").WithDetail("field", "period")
	}
	r.Period = types.MonthStart(r.Period)

	if r.PrevReading.IsNegative() || r.CurrReading.IsNegative() {
		return apperror.NewValidation("readings cannot be negative")
	}
	if r.CurrReading.LessThan(r.PrevReading) {
		return apperror.NewValidation("currReading cannot be less than prevReading").
			WithDetail("prevReading", r.PrevReading.String()).
			WithDetail("currReading", r.CurrReading.String())
	}
	if r.Multiplier.IsNegative() {
		return apperror.NewValidation("multiplier must be positive").WithDetail("field", "multiplier")
	}
	return nil
}
