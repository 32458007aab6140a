package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceLine is one allocated month on a receipt.
type InvoiceLine struct {
	Label      string
	MonthFee   float64
	PaidAmount float64
}

// Invoice carries everything needed to render a payment receipt.
type Invoice struct {
	InvoiceNumber string
	Date          string
	CompanyName   string
	Footer        string

	StudentName string
	StudentCode string
	Institution string
	Batch       string

	Lines       []InvoiceLine
	TotalAmount float64
	PaidAmount  float64
	DueAmount   float64
	Reference   string
	ReceivedBy  string
}

// InvoicePDFExporter renders payment receipts as PDF documents.
type InvoicePDFExporter struct{}

// NewInvoicePDFExporter constructs an invoice PDF exporter.
func NewInvoicePDFExporter() *InvoicePDFExporter {
	return &InvoicePDFExporter{}
}

// Render produces the PDF bytes for one receipt.
func (e *InvoicePDFExporter) Render(inv Invoice) ([]byte, error) {
	if inv.InvoiceNumber == "" {
		return nil, fmt.Errorf("invoice requires an invoice number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(inv.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Invoice %s - %s", inv.InvoiceNumber, inv.Date), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Student", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", inv.StudentName, inv.StudentCode), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Institution: %s", inv.Institution), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Batch: %s", inv.Batch), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(100, 8, "Month", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Fee", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Paid", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range inv.Lines {
		pdf.CellFormat(100, 7, line.Label, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, formatAmount(line.MonthFee), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, formatAmount(line.PaidAmount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s    Paid: %s    Due: %s",
		formatAmount(inv.TotalAmount), formatAmount(inv.PaidAmount), formatAmount(inv.DueAmount)), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if inv.Reference != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Reference: %s", inv.Reference), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Received by: %s", inv.ReceivedBy), "", 1, "", false, 0, "")

	if inv.Footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, inv.Footer, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
