package shop

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"marketbill/internal/core/id"
)

func TestShop_Validate(t *testing.T) {
	marketID := id.New()

	tests := []struct {
		name    string
		mutate  func(s *Shop)
		wantErr bool
	}{
		{"valid", func(s *Shop) {}, false},
		{"missing code", func(s *Shop) { s.Code = " " }, true},
		{"missing market", func(s *Shop) { s.MarketID = id.Nil() }, true},
		{"negative area", func(s *Shop) { s.AreaSqft = decimal.NewNullDecimal(decimal.NewFromInt(-1)) }, true},
		{"null area", func(s *Shop) { s.AreaSqft = decimal.NullDecimal{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShop(marketID, "G-01")
			s.AreaSqft = decimal.NewNullDecimal(decimal.NewFromInt(100))
			tt.mutate(s)

			err := s.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShop_Area(t *testing.T) {
	s := NewShop(id.New(), "A1")
	assert.True(t, s.Area().IsZero())

	s.AreaSqft = decimal.NewNullDecimal(decimal.RequireFromString("120.5"))
	assert.Equal(t, "120.5", s.Area().String())
	assert.Equal(t, "A1", s.Label())
}
