package market

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarket_Validate(t *testing.T) {
	tests := []struct {
		name    string
		market  *Market
		wantErr bool
	}{
		{"valid", NewMarket("Central Plaza"), false},
		{"name trimmed to empty", NewMarket("   "), true},
		{"name too long", NewMarket(strings.Repeat("x", 201)), true},
		{"bad email", &Market{Name: "A", Email: "nobody"}, true},
		{"good email", &Market{Name: "A", Email: "office@plaza.example"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.market.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewMarket_Defaults(t *testing.T) {
	m := NewMarket("North Wing")
	assert.True(t, m.Active)
	assert.False(t, m.ID.String() == "00000000-0000-0000-0000-000000000000")
	assert.False(t, m.CreatedAt.IsZero())
}
