package dto

import (
	"time"

	"marketbill/internal/domain/catalogs/market"
)

// --- Request DTOs ---

// CreateMarketRequest is the request body for creating a market.
type CreateMarketRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Active  *bool  `json:"active"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMarketRequest) ToEntity() *market.Market {
	m := market.NewMarket(r.Name)
	m.Address = r.Address
	m.Phone = r.Phone
	m.Email = r.Email
	m.Active = boolOr(r.Active, true)
	return m
}

// UpdateMarketRequest is the request body for updating a market.
type UpdateMarketRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Active  bool   `json:"active"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMarketRequest) ApplyTo(m *market.Market) {
	m.Name = r.Name
	m.Address = r.Address
	m.Phone = r.Phone
	m.Email = r.Email
	m.Active = r.Active
}

// --- Response DTOs ---

// MarketResponse is the response body for a market.
type MarketResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromMarket creates response DTO from domain entity.
func FromMarket(m *market.Market) *MarketResponse {
	return &MarketResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Address:   m.Address,
		Phone:     m.Phone,
		Email:     m.Email,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
