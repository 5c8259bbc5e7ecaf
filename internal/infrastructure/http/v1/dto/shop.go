package dto

import (
	"github.com/shopspring/decimal"

	"marketbill/internal/domain/catalogs/shop"
)

// CreateShopRequest is the request body for creating a shop.
type CreateShopRequest struct {
	MarketID   string              `json:"marketId" binding:"required"`
	Code       string              `json:"code" binding:"required"`
	Name       string              `json:"name"`
	Floor      string              `json:"floor"`
	Location   string              `json:"location"`
	AreaSqft   decimal.NullDecimal `json:"areaSqft"`
	OwnerName  string              `json:"ownerName"`
	OwnerPhone string              `json:"ownerPhone"`
	Active     *bool               `json:"active"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateShopRequest) ToEntity() (*shop.Shop, error) {
	marketID, err := parseID("marketId", r.MarketID)
	if err != nil {
		return nil, err
	}
	sh := shop.NewShop(marketID, r.Code)
	sh.Name = r.Name
	sh.Floor = r.Floor
	sh.Location = r.Location
	sh.AreaSqft = r.AreaSqft
	sh.OwnerName = r.OwnerName
	sh.OwnerPhone = r.OwnerPhone
	sh.Active = boolOr(r.Active, true)
	return sh, nil
}

// UpdateShopRequest is the request body for updating a shop.
// The market of a shop cannot be changed.
type UpdateShopRequest struct {
	Code       string              `json:"code" binding:"required"`
	Name       string              `json:"name"`
	Floor      string              `json:"floor"`
	Location   string              `json:"location"`
	AreaSqft   decimal.NullDecimal `json:"areaSqft"`
	OwnerName  string              `json:"ownerName"`
	OwnerPhone string              `json:"ownerPhone"`
	Active     bool                `json:"active"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateShopRequest) ApplyTo(sh *shop.Shop) {
	sh.Code = r.Code
	sh.Name = r.Name
	sh.Floor = r.Floor
	sh.Location = r.Location
	sh.AreaSqft = r.AreaSqft
	sh.OwnerName = r.OwnerName
	sh.OwnerPhone = r.OwnerPhone
	sh.Active = r.Active
}

// ShopResponse is the response body for a shop.
type ShopResponse struct {
	ID         string              `json:"id"`
	MarketID   string              `json:"marketId"`
	Code       string              `json:"code"`
	Name       string              `json:"name,omitempty"`
	Floor      string              `json:"floor,omitempty"`
	Location   string              `json:"location,omitempty"`
	AreaSqft   decimal.NullDecimal `json:"areaSqft"`
	OwnerName  string              `json:"ownerName,omitempty"`
	OwnerPhone string              `json:"ownerPhone,omitempty"`
	Active     bool                `json:"active"`
}

// FromShop creates response DTO from domain entity.
func FromShop(sh *shop.Shop) *ShopResponse {
	return &ShopResponse{
		ID:         sh.ID.String(),
		MarketID:   sh.MarketID.String(),
		Code:       sh.Code,
		Name:       sh.Name,
		Floor:      sh.Floor,
		Location:   sh.Location,
		AreaSqft:   sh.AreaSqft,
		OwnerName:  sh.OwnerName,
		OwnerPhone: sh.OwnerPhone,
		Active:     sh.Active,
	}
}
