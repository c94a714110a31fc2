// Package export renders authorized invoices as PDF vouchers.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/jung-kurt/gofpdf"
)

// ErrNotAuthorized indicates a PDF was requested for an invoice the
// authority has not accepted yet.
var ErrNotAuthorized = errors.New("invoice has no authorization to print")

// PDFGenerator renders invoice vouchers. Safe for concurrent use; each
// render builds its own document.
type PDFGenerator struct {
	logger *slog.Logger
}

func NewPDFGenerator(logger *slog.Logger) *PDFGenerator {
	return &PDFGenerator{logger: logger}
}

// VoucherPDF renders the voucher for an authorized invoice.
func (g *PDFGenerator) VoucherPDF(inv *invoice.Invoice) ([]byte, error) {
	if inv.Status != invoice.StatusCreated {
		return nil, ErrNotAuthorized
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Voucher %05d-%08d", inv.PointOfSale, inv.VoucherNumber), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Electronic Invoice", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Voucher %05d-%08d  (type %d)", inv.PointOfSale, inv.VoucherNumber, inv.VoucherType), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s", inv.VoucherDate.ISO()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.writeField(pdf, "Receiver document", fmt.Sprintf("%d (type %d)", inv.DocumentNumber, inv.DocumentType))
	g.writeField(pdf, "Receiver VAT condition", fmt.Sprintf("%d", inv.ReceiverVatConditionID))
	g.writeField(pdf, "Concept", conceptLabel(inv.Concept))
	if inv.RequiresServiceDates() {
		g.writeField(pdf, "Service period", fmt.Sprintf("%s to %s", inv.ServiceFrom.ISO(), inv.ServiceTo.ISO()))
		g.writeField(pdf, "Payment due", inv.PaymentDue.ISO())
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 7, "Amounts", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, inv.Currency(), "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)

	g.writeAmount(pdf, "Net", inv.Net.Decimal())
	g.writeAmount(pdf, "Untaxed", inv.Untaxed.Decimal())
	g.writeAmount(pdf, "Exempt", inv.Exempt.Decimal())
	g.writeAmount(pdf, "Other taxes", inv.OtherTax.Decimal())
	for _, item := range inv.VatItems {
		g.writeAmount(pdf, fmt.Sprintf("VAT (rate %d)", item.RateCategoryID), item.TaxAmount)
	}
	pdf.SetFont("Helvetica", "B", 11)
	g.writeAmount(pdf, "Total", inv.Total.Decimal())
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	g.writeField(pdf, "CAE", inv.CAE)
	g.writeField(pdf, "CAE expiry", inv.CAEExpiry.ISO())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("Failed to render voucher PDF", "invoice_id", inv.ID, "error", err)
		return nil, fmt.Errorf("failed to render voucher PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) writeField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func (g *PDFGenerator) writeAmount(pdf *gofpdf.Fpdf, label string, value float64) {
	pdf.CellFormat(95, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%.2f", value), "", 1, "R", false, 0, "")
}

func conceptLabel(concept int) string {
	switch concept {
	case invoice.ConceptGoods:
		return "Goods"
	case invoice.ConceptServices:
		return "Services"
	case invoice.ConceptGoodsAndServices:
		return "Goods and services"
	default:
		return fmt.Sprintf("Concept %d", concept)
	}
}
