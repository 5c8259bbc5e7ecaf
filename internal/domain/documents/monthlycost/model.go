// Package monthlycost provides the per-market, per-month cost inputs of a billing run.
package monthlycost

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
)

// MonthlyCost holds the cost pools of a market for one month.
// (market, period) is unique. A locked record cannot be changed or removed.
type MonthlyCost struct {
	entity.BaseEntity

	MarketID id.ID     `db:"market_id" json:"marketId"`
	Period   time.Time `db:"period" json:"period"`

	// AC pool = TotalAcUnits * AcUnitPrice
	TotalAcUnits decimal.Decimal `db:"total_ac_units" json:"totalAcUnits"`
	AcUnitPrice  decimal.Decimal `db:"ac_unit_price" json:"acUnitPrice"`

	// Service pool = GuardCost + MaidCost + OtherCost
	GuardCost decimal.Decimal `db:"guard_cost" json:"guardCost"`
	MaidCost  decimal.Decimal `db:"maid_cost" json:"maidCost"`
	OtherCost decimal.Decimal `db:"other_cost" json:"otherCost"`

	GeneratorCost decimal.Decimal `db:"generator_cost" json:"generatorCost"`

	SpecialCost decimal.Decimal `db:"special_cost" json:"specialCost"`
	SpecialName string          `db:"special_name" json:"specialName,omitempty"`

	AcEnabled        bool `db:"ac_enabled" json:"acEnabled"`
	ServiceEnabled   bool `db:"service_enabled" json:"serviceEnabled"`
	GeneratorEnabled bool `db:"generator_enabled" json:"generatorEnabled"`
	SpecialEnabled   bool `db:"special_enabled" json:"specialEnabled"`

	// AreaOverride replaces the summed shop area when set.
	AreaOverride decimal.NullDecimal `db:"area_override" json:"areaOverride"`

	// BillingArea is the area in effect when the record was last saved (display only).
	BillingArea decimal.Decimal `db:"billing_area" json:"billingArea"`

	AcRateOverride        decimal.NullDecimal `db:"ac_rate_override" json:"acRateOverride"`
	ServiceRateOverride   decimal.NullDecimal `db:"service_rate_override" json:"serviceRateOverride"`
	GeneratorRateOverride decimal.NullDecimal `db:"generator_rate_override" json:"generatorRateOverride"`
	SpecialRateOverride   decimal.NullDecimal `db:"special_rate_override" json:"specialRateOverride"`

	IssueDate *time.Time `db:"issue_date" json:"issueDate,omitempty"`
	DueDate   *time.Time `db:"due_date" json:"dueDate,omitempty"`
	Remarks   string     `db:"remarks" json:"remarks,omitempty"`

	Locked bool `db:"locked" json:"locked"`
}

// NewMonthlyCost creates an empty cost record with default category flags.
func NewMonthlyCost(marketID id.ID, period time.Time) *MonthlyCost {
	return &MonthlyCost{
		BaseEntity:       entity.NewBaseEntity(),
		MarketID:         marketID,
		Period:           types.MonthStart(period),
		AcEnabled:        true,
		ServiceEnabled:   true,
		GeneratorEnabled: true,
		SpecialEnabled:   false,
	}
}

// AreaPool is one area-apportioned cost category.
type AreaPool struct {
	Type         domain.ChargeType
	Enabled      bool
	Amount       decimal.Decimal
	RateOverride decimal.NullDecimal
	Label        string
}

// AcPool returns totalAcUnits * acUnitPrice.
func (c *MonthlyCost) AcPool() decimal.Decimal {
	return c.TotalAcUnits.Mul(c.AcUnitPrice)
}

// ServicePool returns guard + maid + other.
func (c *MonthlyCost) ServicePool() decimal.Decimal {
	return types.Sum(c.GuardCost, c.MaidCost, c.OtherCost)
}

// AreaPools returns every area category in invoice order, enabled or not.
func (c *MonthlyCost) AreaPools() []AreaPool {
	special := c.SpecialName
	if special == "" {
		special = domain.ChargeSpecial.Description()
	}
	return []AreaPool{
		{domain.ChargeAC, c.AcEnabled, c.AcPool(), c.AcRateOverride, domain.ChargeAC.Description()},
		{domain.ChargeService, c.ServiceEnabled, c.ServicePool(), c.ServiceRateOverride, domain.ChargeService.Description()},
		{domain.ChargeGenerator, c.GeneratorEnabled, c.GeneratorCost, c.GeneratorRateOverride, domain.ChargeGenerator.Description()},
		{domain.ChargeSpecial, c.SpecialEnabled, c.SpecialCost, c.SpecialRateOverride, special},
	}
}

// PeriodLabel renders the period as YYYY-MM.
func (c *MonthlyCost) PeriodLabel() string {
	return types.FormatPeriod(c.Period)
}

// Validate implements entity.Validatable interface.
func (c *MonthlyCost) Validate(ctx context.Context) error {
	if id.IsNil(c.MarketID) {
		return apperror.NewValidation("marketId is required").WithDetail("field", "marketId")
	}
	if c.Period.IsZero() {
		return apperror.NewValidation("period is required").WithDetail("field", "period")
	}
	c.Period = types.MonthStart(c.Period)

	amounts := map[string]decimal.Decimal{
		"totalAcUnits":  c.TotalAcUnits,
		"acUnitPrice":   c.AcUnitPrice,
		"guardCost":     c.GuardCost,
		"maidCost":      c.MaidCost,
		"otherCost":     c.OtherCost,
		"generatorCost": c.GeneratorCost,
		"specialCost":   c.SpecialCost,
	}
	for field, v := range amounts {
		if v.IsNegative() {
			return apperror.NewValidation(field + " cannot be negative").WithDetail("field", field)
		}
	}

	nullable := map[string]decimal.NullDecimal{
		"areaOverride":          c.AreaOverride,
		"acRateOverride":        c.AcRateOverride,
		"serviceRateOverride":   c.ServiceRateOverride,
		"generatorRateOverride": c.GeneratorRateOverride,
		"specialRateOverride":   c.SpecialRateOverride,
	}
	for field, v := range nullable {
		if v.Valid && v.Decimal.IsNegative() {
			return apperror.NewValidation(field + " cannot be negative").WithDetail("field", field)
		}
	}

	if c.IssueDate != nil && c.DueDate != nil && c.DueDate.Before(*c.IssueDate) {
		return apperror.NewValidation("dueDate cannot be before issueDate").WithDetail("field", "dueDate")
	}
	return nil
}
