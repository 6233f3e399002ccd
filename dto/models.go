package dto

// OCRLine is one text span detected by the OCR engine, in reading order.
// Confidence is normalized to [0,1] regardless of which engine produced it.
type OCRLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// InvoiceData is the structured result of analyzing one invoice page.
// Missing string fields carry the "N/A" sentinel and missing amounts are 0.0,
// so consumers never have to branch on absence.
type InvoiceData struct {
	ID            string  `json:"id"`
	Vendor        string  `json:"vendor"`
	GSTIN         string  `json:"gstin"`
	InvoiceNo     string  `json:"invoiceNo"`
	Date          string  `json:"date"` // DD-MM-YYYY
	TaxableAmount float64 `json:"taxableAmount"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	IGST          float64 `json:"igst"`
	Total         float64 `json:"total"`
	Confidence    float64 `json:"confidence"`
}

// NotAvailable is the sentinel for string fields that could not be extracted.
const NotAvailable = "N/A"

// GSTR1Summary aggregates a batch of invoices for the GSTR-1 report.
type GSTR1Summary struct {
	TotalInvoices      int     `json:"totalInvoices"`
	TotalTaxableAmount float64 `json:"totalTaxableAmount"`
	TotalCGST          float64 `json:"totalCGST"`
	TotalSGST          float64 `json:"totalSGST"`
	TotalIGST          float64 `json:"totalIGST"`
	TotalTax           float64 `json:"totalTax"`
	TotalAmount        float64 `json:"totalAmount"`
}

// EInvoiceQRData is the JSON payload embedded in the QR code printed on
// GST e-invoices. Only the fields we overlay onto extraction results are kept.
type EInvoiceQRData struct {
	SellerGSTIN string  `json:"SellerGstin"`
	BuyerGSTIN  string  `json:"BuyerGstin"`
	DocNo       string  `json:"DocNo"`
	DocDate     string  `json:"DocDt"` // DD/MM/YYYY as printed by the IRP
	TotalValue  float64 `json:"TotInvVal"`
}
