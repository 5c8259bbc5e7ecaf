package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"marketbill/internal/domain/catalogs/shop"
)

// AreaPolicy decides which shops share the area pools and get invoices.
type AreaPolicy string

const (
	// AreaActiveOnly bills and counts only active shops.
	AreaActiveOnly AreaPolicy = "active_only"
	// AreaAll bills and counts every shop of the market.
	AreaAll AreaPolicy = "all"
)

// ParseAreaPolicy validates a configured policy. Empty means AreaActiveOnly.
func ParseAreaPolicy(s string) (AreaPolicy, error) {
	switch AreaPolicy(s) {
	case "", AreaActiveOnly:
		return AreaActiveOnly, nil
	case AreaAll:
		return AreaAll, nil
	default:
		return "", fmt.Errorf("unknown area policy %q", s)
	}
}

// EligibleShops filters shops by the policy, keeping their order.
func EligibleShops(shops []*shop.Shop, policy AreaPolicy) []*shop.Shop {
	out := make([]*shop.Shop, 0, len(shops))
	for _, s := range shops {
		if s == nil {
			continue
		}
		if policy == AreaAll || s.Active {
			out = append(out, s)
		}
	}
	return out
}

// TotalBillableArea sums shop areas (NULL counts as zero) unless an override is set.
func TotalBillableArea(shops []*shop.Shop, override decimal.NullDecimal) decimal.Decimal {
	if override.Valid {
		return override.Decimal
	}
	total := decimal.Zero
	for _, s := range shops {
		total = total.Add(s.Area())
	}
	return total
}
