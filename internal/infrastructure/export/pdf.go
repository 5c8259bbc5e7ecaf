// Package export renders invoices and reports as PDF and XLSX documents.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"marketbill/internal/core/types"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/documents/invoice"
)

const qrImageName = "invoice-qr"

// InvoiceDocument is everything printed on one invoice.
type InvoiceDocument struct {
	Invoice     *invoice.Invoice
	Items       []invoice.Item
	Adjustments []*invoice.Adjustment
	Shop        *shop.Shop
	Market      *market.Market

	// Currency is printed next to amounts.
	Currency string
	// GeneratedAt defaults to now.
	GeneratedAt time.Time
}

// QRPayload is the text encoded in the invoice QR code.
func (d InvoiceDocument) QRPayload() string {
	return strings.Join([]string{
		"MARKETBILL",
		d.Invoice.Number(),
		d.Shop.Code,
		d.Invoice.PeriodLabel(),
		d.Invoice.Total.StringFixed(types.MoneyScale),
	}, "|")
}

func (d InvoiceDocument) money(s string) string {
	if d.Currency == "" {
		return s
	}
	return d.Currency + " " + s
}

// InvoicePDF renders one invoice on a single A4 page with a QR code of its reference.
func InvoicePDF(doc InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Shop == nil {
		return nil, fmt.Errorf("invoice and shop are required")
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}

	png, err := qrcode.Encode(doc.QRPayload(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 90, 160)
	pdf.Cell(0, 10, "Utility Invoice")
	pdf.Ln(9)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "#"+doc.Invoice.Number())
	pdf.Ln(10)

	qrOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, qrOpts, bytes.NewReader(png))
	pdf.ImageOptions(qrImageName, 160, 12, 35, 35, false, qrOpts, 0, "")

	// Status badge
	status := doc.Invoice.Status
	if doc.Invoice.Locked {
		status += " / LOCKED"
	}
	pdf.SetFillColor(230, 236, 245)
	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(45, 6, status, "", 0, "C", true, 0, "")
	pdf.Ln(12)

	// Market
	pdf.SetTextColor(0, 0, 0)
	if doc.Market != nil {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 5, doc.Market.Name)
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 9)
		for _, line := range []string{doc.Market.Address, doc.Market.Phone, doc.Market.Email} {
			if line != "" {
				pdf.Cell(0, 4, line)
				pdf.Ln(4)
			}
		}
		pdf.Ln(4)
	}

	// Bill to
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "BILL TO")
	pdf.Ln(6)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Shop %s %s", doc.Shop.Code, doc.Shop.Name))
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 9)
	if doc.Shop.OwnerName != "" {
		pdf.Cell(0, 4, doc.Shop.OwnerName)
		pdf.Ln(4)
	}
	if doc.Shop.AreaSqft.Valid {
		pdf.Cell(0, 4, "Area: "+doc.Shop.AreaSqft.Decimal.String()+" sqft")
		pdf.Ln(4)
	}
	pdf.Ln(4)

	// Details
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "INVOICE DETAILS")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(0, 4, "Period: "+doc.Invoice.PeriodLabel())
	pdf.Ln(4)
	pdf.Cell(0, 4, fmt.Sprintf("Revision: %d", doc.Invoice.Revision))
	pdf.Ln(4)
	pdf.Cell(0, 4, "Generated: "+doc.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	// Items
	pdf.SetFillColor(245, 245, 245)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(80, 8, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Quantity", "B", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "B", 0, "R", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	for _, it := range doc.Items {
		desc := it.Description
		if it.IsOverridden {
			desc += " *"
		}
		qty := it.Quantity.String()
		if it.Unit != "" {
			qty += " " + it.Unit
		}
		pdf.CellFormat(80, 6, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, qty, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, it.UnitPrice.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, doc.money(it.Amount.StringFixed(types.MoneyScale)), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	if invoice.HasOverride(doc.Items) {
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.Cell(0, 5, "* amount adjusted manually")
		pdf.Ln(5)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	// Total
	pdf.SetFillColor(245, 245, 245)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, "Total: "+doc.money(doc.Invoice.Total.StringFixed(types.MoneyScale)), "", 0, "R", true, 0, "")
	pdf.Ln(16)

	// Adjustments are informational and not part of the total.
	if len(doc.Adjustments) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.Cell(0, 6, "ADJUSTMENTS (NOT INCLUDED IN TOTAL)")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, adj := range doc.Adjustments {
			pdf.CellFormat(145, 5, adj.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 5, doc.money(adj.Amount.StringFixed(types.MoneyScale)), "", 0, "R", false, 0, "")
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
