package domain

import (
	"fmt"
)

// UtilityType identifies what a meter or tariff measures.
type UtilityType string

const (
	UtilityElectric UtilityType = "ELECTRIC"
	UtilityWater    UtilityType = "WATER"
	UtilityGas      UtilityType = "GAS"
)

// Validate reports unknown utility types.
func (u UtilityType) Validate() error {
	switch u {
	case UtilityElectric, UtilityWater, UtilityGas:
		return nil
	default:
		return fmt.Errorf("unknown utility type %q", string(u))
	}
}

// ChargeType is the category of one invoice line.
type ChargeType string

const (
	ChargeElectricity ChargeType = "ELECTRICITY"
	ChargeAC          ChargeType = "AC"
	ChargeService     ChargeType = "SERVICE"
	ChargeGenerator   ChargeType = "GENERATOR"
	ChargeSpecial     ChargeType = "SPECIAL"
)

// AreaChargeTypes lists the area-apportioned categories in invoice order.
var AreaChargeTypes = []ChargeType{ChargeAC, ChargeService, ChargeGenerator, ChargeSpecial}

// Validate reports unknown charge types.
func (c ChargeType) Validate() error {
	switch c {
	case ChargeElectricity, ChargeAC, ChargeService, ChargeGenerator, ChargeSpecial:
		return nil
	default:
		return fmt.Errorf("unknown charge type %q", string(c))
	}
}

// Unit is the quantity unit printed on invoice lines of this category.
func (c ChargeType) Unit() string {
	if c == ChargeElectricity {
		return "kWh"
	}
	return "sqft"
}

// Description is the default invoice line label.
func (c ChargeType) Description() string {
	switch c {
	case ChargeElectricity:
		return "Electricity consumption"
	case ChargeAC:
		return "AC charges"
	case ChargeService:
		return "Service charges (Guard, Maid, Other)"
	case ChargeGenerator:
		return "Generator charges"
	case ChargeSpecial:
		return "Special charges"
	default:
		return string(c)
	}
}
