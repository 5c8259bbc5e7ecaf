// Package meter provides the Meter catalog.
package meter

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// Meter measures one utility for one shop.
// (shop, utility, serial) is unique.
type Meter struct {
	entity.BaseEntity

	ShopID      id.ID              `db:"shop_id" json:"shopId"`
	UtilityType domain.UtilityType `db:"utility_type" json:"utilityType"`
	Serial      string             `db:"serial" json:"serial"`

	// Multiplier converts dial units into billable units (CT ratio). Default 1.
	Multiplier decimal.Decimal `db:"multiplier" json:"multiplier"`

	Active bool `db:"active" json:"active"`
}

// NewMeter creates an active meter with multiplier 1.
func NewMeter(shopID id.ID, utility domain.UtilityType, serial string) *Meter {
	return &Meter{
		BaseEntity:  entity.NewBaseEntity(),
		ShopID:      shopID,
		UtilityType: utility,
		Serial:      serial,
		Multiplier:  decimal.NewFromInt(1),
		Active:      true,
	}
}

// Validate implements entity.Validatable interface.
func (m *Meter) Validate(ctx context.Context) error {
	m.Serial = strings.TrimSpace(m.Serial)
	if id.IsNil(m.ShopID) {
		return apperror.NewValidation("shopId is required").WithDetail("field", "shopId")
	}
	if m.Serial == "" {
		return apperror.NewValidation("serial is required").WithDetail("field", "serial")
	}
	if err := m.UtilityType.Validate(); err != nil {
		return apperror.NewValidation(err.Error()).WithDetail("field", "utilityType")
	}
	if m.Multiplier.IsZero() {
		m.Multiplier = decimal.NewFromInt(1)
	}
	if m.Multiplier.IsNegative() {
		return apperror.NewValidation("multiplier must be positive").WithDetail("field", "multiplier")
	}
	return nil
}

// BillingMeter picks the meter used for electricity billing:
// the active ELECTRIC meter with the lowest id. Returns nil when there is none.
func BillingMeter(meters []*Meter) *Meter {
	var chosen *Meter
	for _, m := range meters {
		if !m.Active || m.UtilityType != domain.UtilityElectric {
			continue
		}
		if chosen == nil || id.Less(m.ID, chosen.ID) {
			chosen = m
		}
	}
	return chosen
}
