// Package reports provides the read models behind the billing dashboard.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/id"
	"marketbill/internal/domain"
)

// --- Market summary ---

// KPIs aggregates the invoices of one market and month.
type KPIs struct {
	InvoiceCount      int             `json:"invoiceCount" db:"invoice_count"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ElectricityUnits  decimal.Decimal `json:"electricityUnits" db:"electricity_units"`
	ElectricityAmount decimal.Decimal `json:"electricityAmount" db:"electricity_amount"`
	AcCost            decimal.Decimal `json:"acCost" db:"ac_cost"`
	ServiceCost       decimal.Decimal `json:"serviceCost" db:"service_cost"`
	GeneratorCost     decimal.Decimal `json:"generatorCost" db:"generator_cost"`
	SpecialCost       decimal.Decimal `json:"specialCost" db:"special_cost"`
}

// HealthPanel tells whether the month is ready to be billed or closed.
type HealthPanel struct {
	InputsOk              bool `json:"inputsOk"`
	MissingReadingsCount  int  `json:"missingReadingsCount"`
	TariffOk              bool `json:"tariffOk"`
	UnlockedInvoicesCount int  `json:"unlockedInvoicesCount"`
}

// PoolRate is the derived rate of one area category.
type PoolRate struct {
	Type       domain.ChargeType `json:"type"`
	Label      string            `json:"label"`
	Enabled    bool              `json:"enabled"`
	Pool       decimal.Decimal   `json:"pool"`
	Rate       decimal.Decimal   `json:"rate"`
	Overridden bool              `json:"overridden"`
}

// InputsSnapshot shows the cost inputs of the month and the rates they yield.
// It is empty when no monthly cost exists.
type InputsSnapshot struct {
	AcTotalUnits    decimal.Decimal `json:"acTotalUnits"`
	AcUnitPrice     decimal.Decimal `json:"acUnitPrice"`
	GuardCost       decimal.Decimal `json:"guardCost"`
	MaidCost        decimal.Decimal `json:"maidCost"`
	OtherCost       decimal.Decimal `json:"otherCost"`
	GeneratorCost   decimal.Decimal `json:"generatorCost"`
	SpecialCost     decimal.Decimal `json:"specialCost"`
	MarketTotalSqft decimal.Decimal `json:"marketTotalSqft"`
	ElectricityRate decimal.Decimal `json:"electricityRate"`
	Rates           []PoolRate      `json:"rates,omitempty"`
	Locked          bool            `json:"locked"`
}

// MarketSummary is the dashboard of one market and month.
type MarketSummary struct {
	MarketID id.ID          `json:"marketId"`
	Period   string         `json:"period"`
	KPIs     KPIs           `json:"kpis"`
	Health   HealthPanel    `json:"health"`
	Inputs   InputsSnapshot `json:"inputs"`
}

// --- Reading status ---

// ReadingStatus is one meter row of the reading checklist.
type ReadingStatus struct {
	ShopID      id.ID               `json:"shopId"`
	ShopCode    string              `json:"shopCode"`
	ShopName    string              `json:"shopName"`
	MeterID     id.ID               `json:"meterId"`
	MeterSerial string              `json:"meterSerial"`
	PrevReading decimal.NullDecimal `json:"prevReading"`
	CurrReading decimal.NullDecimal `json:"currReading"`
	Units       decimal.NullDecimal `json:"units"`
	Missing     bool                `json:"missing"`
}

// --- Invoice table ---

// InvoiceTableFilter selects one page of the invoice table.
type InvoiceTableFilter struct {
	MarketID id.ID
	Period   time.Time

	// Status filter (optional)
	Status string

	Limit  int
	Offset int
}

// InvoiceRow is one invoice with its charge breakdown.
type InvoiceRow struct {
	InvoiceID         id.ID           `json:"invoiceId" db:"invoice_id"`
	ShopID            id.ID           `json:"shopId" db:"shop_id"`
	ShopCode          string          `json:"shopCode" db:"shop_code"`
	ShopName          string          `json:"shopName" db:"shop_name"`
	ElectricityAmount decimal.Decimal `json:"electricityAmount" db:"electricity_amount"`
	AcAmount          decimal.Decimal `json:"acAmount" db:"ac_amount"`
	ServiceAmount     decimal.Decimal `json:"serviceAmount" db:"service_amount"`
	GeneratorAmount   decimal.Decimal `json:"generatorAmount" db:"generator_amount"`
	SpecialAmount     decimal.Decimal `json:"specialAmount" db:"special_amount"`
	Total             decimal.Decimal `json:"total" db:"total"`
	Status            string          `json:"status" db:"status"`
	Locked            bool            `json:"locked" db:"locked"`
	Revision          int             `json:"revision" db:"revision"`
	HasOverride       bool            `json:"hasOverride" db:"has_override"`
}

// InvoicePage is one page of the invoice table, ordered by shop code.
type InvoicePage struct {
	Items      []InvoiceRow `json:"items"`
	TotalCount int          `json:"totalCount"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}
