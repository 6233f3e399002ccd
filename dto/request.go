package dto

// AnalyzeRequest is the JSON body of POST /invoice/analyze.
// Each entry is a base64-encoded image, optionally with a data-URL prefix.
type AnalyzeRequest struct {
	Images []string `json:"images" binding:"required"`
}

// Validate performs basic validation on the request
func (r *AnalyzeRequest) Validate() error {
	if len(r.Images) == 0 {
		return ErrNoImages
	}
	return nil
}

// GSTR1Request is the JSON body of POST /invoice/gstr1.
type GSTR1Request struct {
	Invoices []InvoiceData `json:"invoices" binding:"required"`
}

// Validate performs basic validation on the request
func (r *GSTR1Request) Validate() error {
	if len(r.Invoices) == 0 {
		return ErrNoInvoices
	}
	return nil
}
