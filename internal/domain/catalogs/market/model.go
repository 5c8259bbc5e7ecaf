// Package market provides the Market catalog.
// A market is a building (or site) whose shops share cost pools.
package market

import (
	"context"
	"strings"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/entity"
)

// Market represents a group of shops billed together.
type Market struct {
	entity.BaseEntity

	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Email   string `db:"email" json:"email,omitempty"`

	// Active markets are offered in billing forms. Inactive ones keep their history.
	Active bool `db:"active" json:"active"`
}

// NewMarket creates an active market.
func NewMarket(name string) *Market {
	return &Market{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Active:     true,
	}
}

// Validate implements entity.Validatable interface.
func (m *Market) Validate(ctx context.Context) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(m.Name) > 200 {
		return apperror.NewValidation("name must be at most 200 characters").WithDetail("field", "name")
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email").
			WithDetail("value", m.Email)
	}
	return nil
}
