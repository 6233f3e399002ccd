package dto

import "errors"

// Custom errors
var (
	ErrNoImages   = errors.New("no images provided")
	ErrNoInvoices = errors.New("no invoices provided")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeResponse is the final response of the analyze endpoint.
type AnalyzeResponse struct {
	Invoices    []InvoiceData `json:"invoices"`
	Explanation string        `json:"explanation"`
}

// GSTR1Response carries the aggregate summary plus the rendered CSV.
type GSTR1Response struct {
	Summary GSTR1Summary `json:"summary"`
	CSVData string       `json:"csvData"`
}
