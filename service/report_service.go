package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/kirana-copilot/gst-invoice-ocr/dto"
)

// ReportService builds GSTR-1 filing data from analyzed invoices.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// GenerateGSTR1 aggregates a batch of invoice records into the GSTR-1
// summary and renders the fixed-column CSV, one row per record in input
// order.
func (s *ReportService) GenerateGSTR1(invoices []dto.InvoiceData) (*dto.GSTR1Response, error) {
	if len(invoices) == 0 {
		return nil, dto.ErrNoInvoices
	}

	summary := dto.GSTR1Summary{
		TotalInvoices: len(invoices),
	}

	for _, inv := range invoices {
		summary.TotalTaxableAmount += inv.TaxableAmount
		summary.TotalCGST += inv.CGST
		summary.TotalSGST += inv.SGST
		summary.TotalIGST += inv.IGST
	}

	summary.TotalTax = summary.TotalCGST + summary.TotalSGST + summary.TotalIGST
	summary.TotalAmount = summary.TotalTaxableAmount + summary.TotalTax

	summary.TotalTaxableAmount = roundMoney(summary.TotalTaxableAmount)
	summary.TotalCGST = roundMoney(summary.TotalCGST)
	summary.TotalSGST = roundMoney(summary.TotalSGST)
	summary.TotalIGST = roundMoney(summary.TotalIGST)
	summary.TotalTax = roundMoney(summary.TotalTax)
	summary.TotalAmount = roundMoney(summary.TotalAmount)

	return &dto.GSTR1Response{
		Summary: summary,
		CSVData: renderCSV(invoices),
	}, nil
}

// renderCSV writes the GSTR-1 export. Values are unquoted and
// comma-joined; the column set is fixed by the filing format.
func renderCSV(invoices []dto.InvoiceData) string {
	var b strings.Builder
	b.WriteString("GSTIN,Invoice No,Date,Taxable Amount,CGST,SGST,IGST,Total\n")

	rows := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, fmt.Sprintf(
			"%s,%s,%s,%.2f,%.2f,%.2f,%.2f,%.2f",
			inv.GSTIN, inv.InvoiceNo, inv.Date,
			inv.TaxableAmount, inv.CGST, inv.SGST, inv.IGST, inv.Total,
		))
	}

	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
