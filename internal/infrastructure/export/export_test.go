package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"marketbill/internal/core/entity"
	"marketbill/internal/core/id"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/reports"
)

func sampleDocument() InvoiceDocument {
	m := market.NewMarket("Central")
	sh := shop.NewShop(m.ID, "A-01")
	sh.Name = "Tea House"
	sh.AreaSqft = decimal.NewNullDecimal(decimal.RequireFromString("1000"))

	inv := &invoice.Invoice{
		BaseEntity: entity.BaseEntity{ID: id.MustParse("0190b6c8-0000-7000-8000-000000000001")},
		Period:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ShopID:     sh.ID,
		Total:      decimal.RequireFromString("7831.6"),
		Status:     invoice.StatusUnpaid,
		Revision:   1,
	}
	return InvoiceDocument{
		Invoice: inv,
		Shop:    sh,
		Market:  m,
		Items: []invoice.Item{
			{ItemType: domain.ChargeElectricity, Description: "Electricity consumption", Quantity: decimal.RequireFromString("120.5"), Unit: "kWh", UnitPrice: decimal.RequireFromString("15.2"), Amount: decimal.RequireFromString("1831.6")},
			{ItemType: domain.ChargeAC, Description: "AC charges", Quantity: decimal.RequireFromString("1000"), Unit: "sqft", UnitPrice: decimal.RequireFromString("5"), Amount: decimal.RequireFromString("5000"), IsOverridden: true, OverrideReason: "agreed"},
		},
		Adjustments: []*invoice.Adjustment{{Label: "Late fee", Amount: decimal.RequireFromString("50")}},
		Currency:    "PKR",
		GeneratedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "MARKETBILL|INV-202501-0190b6c8|A-01|2025-01|7831.60", sampleDocument().QRPayload())
}

func TestInvoicePDF(t *testing.T) {
	out, err := InvoicePDF(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestInvoicePDF_RequiresInvoiceAndShop(t *testing.T) {
	_, err := InvoicePDF(InvoiceDocument{})
	assert.Error(t, err)
}

func TestInvoiceTableXLSX(t *testing.T) {
	rows := []reports.InvoiceRow{
		{ShopCode: "A-01", ShopName: "Tea House", ElectricityAmount: decimal.RequireFromString("1831.6"), Total: decimal.RequireFromString("7831.6"), Status: "UNPAID", Revision: 1},
		{ShopCode: "A-02", Total: decimal.RequireFromString("152"), Status: "PAID", Locked: true, HasOverride: true, Revision: 2},
	}
	summary := &reports.MarketSummary{KPIs: reports.KPIs{InvoiceCount: 2}}

	out, err := InvoiceTableXLSX("Central", "2025-01", rows, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{invoicesSheet, summarySheet}, f.GetSheetList())

	v, err := f.GetCellValue(invoicesSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Shop code", v)

	v, err = f.GetCellValue(invoicesSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "A-02", v)

	v, err = f.GetCellValue(invoicesSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "7831.6", v)

	v, err = f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}
