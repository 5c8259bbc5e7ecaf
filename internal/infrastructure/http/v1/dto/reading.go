package dto

import (
	"github.com/shopspring/decimal"

	"marketbill/internal/core/types"
	"marketbill/internal/domain/documents/reading"
)

// CreateReadingRequest is the request body for entering a monthly reading.
type CreateReadingRequest struct {
	MeterID     string          `json:"meterId" binding:"required"`
	Period      string          `json:"period" binding:"required"`
	PrevReading decimal.Decimal `json:"prevReading"`
	CurrReading decimal.Decimal `json:"currReading"`
	// Multiplier zero inherits the meter multiplier.
	Multiplier decimal.Decimal `json:"multiplier"`
	ReadAt     *string         `json:"readAt"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateReadingRequest) ToEntity() (*reading.Reading, error) {
	meterID, err := parseID("meterId", r.MeterID)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod("period", r.Period)
	if err != nil {
		return nil, err
	}
	readAt, err := parseOptionalDate("readAt", r.ReadAt)
	if err != nil {
		return nil, err
	}

	rd := reading.NewReading(meterID, period, r.PrevReading, r.CurrReading)
	rd.Multiplier = r.Multiplier
	rd.ReadAt = readAt
	return rd, nil
}

// UpdateReadingRequest is the request body for correcting a reading.
// Meter and period are fixed once entered.
type UpdateReadingRequest struct {
	PrevReading decimal.Decimal `json:"prevReading"`
	CurrReading decimal.Decimal `json:"currReading"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	ReadAt      *string         `json:"readAt"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateReadingRequest) ApplyTo(rd *reading.Reading) error {
	readAt, err := parseOptionalDate("readAt", r.ReadAt)
	if err != nil {
		return err
	}
	rd.PrevReading = r.PrevReading
	rd.CurrReading = r.CurrReading
	rd.Multiplier = r.Multiplier
	rd.ReadAt = readAt
	return nil
}

// ReadingResponse is the response body for a reading.
type ReadingResponse struct {
	ID          string          `json:"id"`
	MeterID     string          `json:"meterId"`
	Period      string          `json:"period"`
	PrevReading decimal.Decimal `json:"prevReading"`
	CurrReading decimal.Decimal `json:"currReading"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Consumption decimal.Decimal `json:"consumption"`
	ReadAt      *string         `json:"readAt,omitempty"`
}

// FromReading creates response DTO from domain entity.
func FromReading(rd *reading.Reading) *ReadingResponse {
	return &ReadingResponse{
		ID:          rd.ID.String(),
		MeterID:     rd.MeterID.String(),
		Period:      types.FormatPeriod(rd.Period),
		PrevReading: rd.PrevReading,
		CurrReading: rd.CurrReading,
		Multiplier:  rd.Multiplier,
		Consumption: rd.Consumption,
		ReadAt:      formatOptionalDate(rd.ReadAt),
	}
}
