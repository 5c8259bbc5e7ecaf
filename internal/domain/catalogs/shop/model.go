// Package shop provides the Shop catalog: billable units of a market.
package shop

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
)

// Shop is a rentable unit with a floor area and an owner.
type Shop struct {
	entity.BaseEntity

	MarketID id.ID  `db:"market_id" json:"marketId"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name,omitempty"`
	Floor    string `db:"floor" json:"floor,omitempty"`
	Location string `db:"location" json:"location,omitempty"`

	// AreaSqft is nullable; a shop without area contributes zero to area pools.
	AreaSqft decimal.NullDecimal `db:"area_sqft" json:"areaSqft"`

	OwnerName  string `db:"owner_name" json:"ownerName,omitempty"`
	OwnerPhone string `db:"owner_phone" json:"ownerPhone,omitempty"`

	Active bool `db:"active" json:"active"`
}

// NewShop creates an active shop in the given market.
func NewShop(marketID id.ID, code string) *Shop {
	return &Shop{
		BaseEntity: entity.NewBaseEntity(),
		MarketID:   marketID,
		Code:       code,
		Active:     true,
	}
}

// Area returns the floor area, zero when unknown.
func (s *Shop) Area() decimal.Decimal {
	if s.AreaSqft.Valid {
		return s.AreaSqft.Decimal
	}
	return decimal.Zero
}

// Label is how the shop is named in warnings and reports.
func (s *Shop) Label() string {
	if s.Code != "" {
		return s.Code
	}
	return s.ID.String()
}

// Validate implements entity.Validatable interface.
func (s *Shop) Validate(ctx context.Context) error {
	s.Code = strings.TrimSpace(s.Code)
	if s.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if len(s.Code) > 50 {
		return apperror.NewValidation("code must be at most 50 characters").WithDetail("field", "code")
	}
	if id.IsNil(s.MarketID) {
		return apperror.NewValidation("marketId is required").WithDetail("field", "marketId")
	}
	if s.AreaSqft.Valid && s.AreaSqft.Decimal.IsNegative() {
		return apperror.NewValidation("areaSqft cannot be negative").
			WithDetail("field", "areaSqft").
			WithDetail("value", s.AreaSqft.Decimal.String())
	}
	return nil
}
