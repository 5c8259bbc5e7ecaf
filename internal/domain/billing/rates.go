// Package billing computes utility invoices for the shops of a market:
// it derives market-wide rates once, charges every eligible shop and
// materializes the results as invoices.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/tariff"
)

var (
	// ErrNonPositiveArea is returned when a pool has to be spread over no area.
	ErrNonPositiveArea = errors.New("total billable area must be positive")

	// ErrNoTariff is returned when no electricity tariff applies.
	ErrNoTariff = errors.New("no electricity tariff")
)

// DeriveAreaRate turns a cost pool into a per-area rate.
// A valid override is returned unchanged and the area is not consulted.
func DeriveAreaRate(pool, totalArea decimal.Decimal, override decimal.NullDecimal) (decimal.Decimal, error) {
	if override.Valid {
		return override.Decimal, nil
	}
	if !totalArea.IsPositive() {
		return decimal.Zero, ErrNonPositiveArea
	}
	return types.DivRate(pool, totalArea), nil
}

// TariffPolicy decides which tariff applies to a billing month.
type TariffPolicy string

const (
	// TariffLatest uses the tariff with the greatest effectiveFrom, regardless of the period.
	TariffLatest TariffPolicy = "latest"
	// TariffEffective uses the newest tariff that started on or before the last day of the period.
	TariffEffective TariffPolicy = "effective"
)

// ParseTariffPolicy validates a configured policy. Empty means TariffLatest.
func ParseTariffPolicy(s string) (TariffPolicy, error) {
	switch TariffPolicy(s) {
	case "", TariffLatest:
		return TariffLatest, nil
	case TariffEffective:
		return TariffEffective, nil
	default:
		return "", fmt.Errorf("unknown tariff policy %q", s)
	}
}

// SelectElectricTariff picks the ELECTRIC tariff for the period under the policy.
func SelectElectricTariff(tariffs []*tariff.Tariff, period time.Time, policy TariffPolicy) (*tariff.Tariff, error) {
	cutoff := types.MonthEnd(period)

	var chosen *tariff.Tariff
	for _, t := range tariffs {
		if t == nil || t.UtilityType != domain.UtilityElectric {
			continue
		}
		if policy == TariffEffective && t.EffectiveFrom.After(cutoff) {
			continue
		}
		if chosen == nil || newerTariff(t, chosen) {
			chosen = t
		}
	}
	if chosen == nil {
		return nil, ErrNoTariff
	}
	return chosen, nil
}

func newerTariff(a, b *tariff.Tariff) bool {
	if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
		return a.EffectiveFrom.After(b.EffectiveFrom)
	}
	return id.Less(b.ID, a.ID)
}
