package dto

import (
	"github.com/shopspring/decimal"

	"marketbill/internal/domain/documents/monthlycost"
)

// CostInputs are the editable fields of a monthly cost record.
type CostInputs struct {
	TotalAcUnits decimal.Decimal `json:"totalAcUnits"`
	AcUnitPrice  decimal.Decimal `json:"acUnitPrice"`

	GuardCost decimal.Decimal `json:"guardCost"`
	MaidCost  decimal.Decimal `json:"maidCost"`
	OtherCost decimal.Decimal `json:"otherCost"`

	GeneratorCost decimal.Decimal `json:"generatorCost"`
	SpecialCost   decimal.Decimal `json:"specialCost"`
	SpecialName   string          `json:"specialName"`

	AcEnabled        *bool `json:"acEnabled"`
	ServiceEnabled   *bool `json:"serviceEnabled"`
	GeneratorEnabled *bool `json:"generatorEnabled"`
	SpecialEnabled   *bool `json:"specialEnabled"`

	AreaOverride          decimal.NullDecimal `json:"areaOverride"`
	AcRateOverride        decimal.NullDecimal `json:"acRateOverride"`
	ServiceRateOverride   decimal.NullDecimal `json:"serviceRateOverride"`
	GeneratorRateOverride decimal.NullDecimal `json:"generatorRateOverride"`
	SpecialRateOverride   decimal.NullDecimal `json:"specialRateOverride"`

	IssueDate *string `json:"issueDate"`
	DueDate   *string `json:"dueDate"`
	Remarks   string  `json:"remarks"`
}

// applyTo copies the inputs onto c. Category flags left out keep their current value.
func (in *CostInputs) applyTo(c *monthlycost.MonthlyCost) error {
	issue, err := parseOptionalDate("issueDate", in.IssueDate)
	if err != nil {
		return err
	}
	due, err := parseOptionalDate("dueDate", in.DueDate)
	if err != nil {
		return err
	}

	c.TotalAcUnits = in.TotalAcUnits
	c.AcUnitPrice = in.AcUnitPrice
	c.GuardCost = in.GuardCost
	c.MaidCost = in.MaidCost
	c.OtherCost = in.OtherCost
	c.GeneratorCost = in.GeneratorCost
	c.SpecialCost = in.SpecialCost
	c.SpecialName = in.SpecialName

	c.AcEnabled = boolOr(in.AcEnabled, c.AcEnabled)
	c.ServiceEnabled = boolOr(in.ServiceEnabled, c.ServiceEnabled)
	c.GeneratorEnabled = boolOr(in.GeneratorEnabled, c.GeneratorEnabled)
	c.SpecialEnabled = boolOr(in.SpecialEnabled, c.SpecialEnabled)

	c.AreaOverride = in.AreaOverride
	c.AcRateOverride = in.AcRateOverride
	c.ServiceRateOverride = in.ServiceRateOverride
	c.GeneratorRateOverride = in.GeneratorRateOverride
	c.SpecialRateOverride = in.SpecialRateOverride

	c.IssueDate = issue
	c.DueDate = due
	c.Remarks = in.Remarks
	return nil
}

// CreateMonthlyCostRequest is the request body for entering the inputs of a month.
type CreateMonthlyCostRequest struct {
	MarketID string `json:"marketId" binding:"required"`
	Period   string `json:"period" binding:"required"`
	CostInputs
}

// ToEntity converts DTO to domain entity.
func (r *CreateMonthlyCostRequest) ToEntity() (*monthlycost.MonthlyCost, error) {
	marketID, err := parseID("marketId", r.MarketID)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod("period", r.Period)
	if err != nil {
		return nil, err
	}
	c := monthlycost.NewMonthlyCost(marketID, period)
	if err := r.applyTo(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateMonthlyCostRequest is the request body for changing the inputs of a month.
type UpdateMonthlyCostRequest struct {
	CostInputs
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMonthlyCostRequest) ApplyTo(c *monthlycost.MonthlyCost) error {
	return r.applyTo(c)
}

// MonthlyCostResponse is the response body for a monthly cost record.
type MonthlyCostResponse struct {
	ID       string `json:"id"`
	MarketID string `json:"marketId"`
	Period   string `json:"period"`

	TotalAcUnits decimal.Decimal `json:"totalAcUnits"`
	AcUnitPrice  decimal.Decimal `json:"acUnitPrice"`
	AcPool       decimal.Decimal `json:"acPool"`

	GuardCost   decimal.Decimal `json:"guardCost"`
	MaidCost    decimal.Decimal `json:"maidCost"`
	OtherCost   decimal.Decimal `json:"otherCost"`
	ServicePool decimal.Decimal `json:"servicePool"`

	GeneratorCost decimal.Decimal `json:"generatorCost"`
	SpecialCost   decimal.Decimal `json:"specialCost"`
	SpecialName   string          `json:"specialName,omitempty"`

	AcEnabled        bool `json:"acEnabled"`
	ServiceEnabled   bool `json:"serviceEnabled"`
	GeneratorEnabled bool `json:"generatorEnabled"`
	SpecialEnabled   bool `json:"specialEnabled"`

	AreaOverride          decimal.NullDecimal `json:"areaOverride"`
	BillingArea           decimal.Decimal     `json:"billingArea"`
	AcRateOverride        decimal.NullDecimal `json:"acRateOverride"`
	ServiceRateOverride   decimal.NullDecimal `json:"serviceRateOverride"`
	GeneratorRateOverride decimal.NullDecimal `json:"generatorRateOverride"`
	SpecialRateOverride   decimal.NullDecimal `json:"specialRateOverride"`

	IssueDate *string `json:"issueDate,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Remarks   string  `json:"remarks,omitempty"`
	Locked    bool    `json:"locked"`
}

// FromMonthlyCost creates response DTO from domain entity.
func FromMonthlyCost(c *monthlycost.MonthlyCost) *MonthlyCostResponse {
	return &MonthlyCostResponse{
		ID:                    c.ID.String(),
		MarketID:              c.MarketID.String(),
		Period:                c.PeriodLabel(),
		TotalAcUnits:          c.TotalAcUnits,
		AcUnitPrice:           c.AcUnitPrice,
		AcPool:                c.AcPool(),
		GuardCost:             c.GuardCost,
		MaidCost:              c.MaidCost,
		OtherCost:             c.OtherCost,
		ServicePool:           c.ServicePool(),
		GeneratorCost:         c.GeneratorCost,
		SpecialCost:           c.SpecialCost,
		SpecialName:           c.SpecialName,
		AcEnabled:             c.AcEnabled,
		ServiceEnabled:        c.ServiceEnabled,
		GeneratorEnabled:      c.GeneratorEnabled,
		SpecialEnabled:        c.SpecialEnabled,
		AreaOverride:          c.AreaOverride,
		BillingArea:           c.BillingArea,
		AcRateOverride:        c.AcRateOverride,
		ServiceRateOverride:   c.ServiceRateOverride,
		GeneratorRateOverride: c.GeneratorRateOverride,
		SpecialRateOverride:   c.SpecialRateOverride,
		IssueDate:             formatOptionalDate(c.IssueDate),
		DueDate:               formatOptionalDate(c.DueDate),
		Remarks:               c.Remarks,
		Locked:                c.Locked,
	}
}
