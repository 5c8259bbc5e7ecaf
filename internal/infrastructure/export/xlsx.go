package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"marketbill/internal/domain/reports"
)

const (
	invoicesSheet = "invoices"
	summarySheet  = "summary"
)

var invoiceColumns = []string{
	"Shop code", "Shop name", "Electricity", "AC", "Service", "Generator", "Special",
	"Total", "Status", "Locked", "Overridden", "Revision",
}

// InvoiceTableXLSX renders the invoice table of a month, with KPIs on a second sheet
// when a summary is given.
func InvoiceTableXLSX(marketName string, period string, rows []reports.InvoiceRow, summary *reports.MarketSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range invoiceColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(invoicesSheet, cell, title)
	}

	for i, r := range rows {
		values := []any{
			r.ShopCode,
			r.ShopName,
			r.ElectricityAmount.InexactFloat64(),
			r.AcAmount.InexactFloat64(),
			r.ServiceAmount.InexactFloat64(),
			r.GeneratorAmount.InexactFloat64(),
			r.SpecialAmount.InexactFloat64(),
			r.Total.InexactFloat64(),
			r.Status,
			r.Locked,
			r.HasOverride,
			r.Revision,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(invoicesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if summary != nil {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return nil, fmt.Errorf("add summary sheet: %w", err)
		}
		k := summary.KPIs
		pairs := [][2]any{
			{"Market", marketName},
			{"Period", period},
			{"Invoices", k.InvoiceCount},
			{"Total amount", k.TotalAmount.InexactFloat64()},
			{"Electricity units", k.ElectricityUnits.InexactFloat64()},
			{"Electricity amount", k.ElectricityAmount.InexactFloat64()},
			{"AC", k.AcCost.InexactFloat64()},
			{"Service", k.ServiceCost.InexactFloat64()},
			{"Generator", k.GeneratorCost.InexactFloat64()},
			{"Special", k.SpecialCost.InexactFloat64()},
			{"Missing readings", summary.Health.MissingReadingsCount},
			{"Unlocked invoices", summary.Health.UnlockedInvoicesCount},
		}
		for i, p := range pairs {
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), p[0])
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), p[1])
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
