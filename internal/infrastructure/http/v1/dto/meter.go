package dto

import (
	"github.com/shopspring/decimal"

	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/meter"
)

// CreateMeterRequest is the request body for creating a meter.
type CreateMeterRequest struct {
	ShopID      string             `json:"shopId" binding:"required"`
	UtilityType domain.UtilityType `json:"utilityType" binding:"required"`
	Serial      string             `json:"serial" binding:"required"`
	Multiplier  decimal.Decimal    `json:"multiplier"`
	Active      *bool              `json:"active"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMeterRequest) ToEntity() (*meter.Meter, error) {
	shopID, err := parseID("shopId", r.ShopID)
	if err != nil {
		return nil, err
	}
	m := meter.NewMeter(shopID, r.UtilityType, r.Serial)
	if !r.Multiplier.IsZero() {
		m.Multiplier = r.Multiplier
	}
	m.Active = boolOr(r.Active, true)
	return m, nil
}

// UpdateMeterRequest is the request body for updating a meter.
type UpdateMeterRequest struct {
	UtilityType domain.UtilityType `json:"utilityType" binding:"required"`
	Serial      string             `json:"serial" binding:"required"`
	Multiplier  decimal.Decimal    `json:"multiplier"`
	Active      bool               `json:"active"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMeterRequest) ApplyTo(m *meter.Meter) {
	m.UtilityType = r.UtilityType
	m.Serial = r.Serial
	m.Multiplier = r.Multiplier
	m.Active = r.Active
}

// MeterResponse is the response body for a meter.
type MeterResponse struct {
	ID          string             `json:"id"`
	ShopID      string             `json:"shopId"`
	UtilityType domain.UtilityType `json:"utilityType"`
	Serial      string             `json:"serial"`
	Multiplier  decimal.Decimal    `json:"multiplier"`
	Active      bool               `json:"active"`
}

// FromMeter creates response DTO from domain entity.
func FromMeter(m *meter.Meter) *MeterResponse {
	return &MeterResponse{
		ID:          m.ID.String(),
		ShopID:      m.ShopID.String(),
		UtilityType: m.UtilityType,
		Serial:      m.Serial,
		Multiplier:  m.Multiplier,
		Active:      m.Active,
	}
}
