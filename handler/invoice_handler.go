package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kirana-copilot/gst-invoice-ocr/dto"
	"github.com/kirana-copilot/gst-invoice-ocr/service"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	reportService  *service.ReportService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, reportService *service.ReportService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		reportService:  reportService,
	}
}

// Analyze handles POST /invoice/analyze: a JSON batch of base64 images.
func (h *InvoiceHandler) Analyze(c *gin.Context) {
	log.Println("Received invoice analysis request")

	var request dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	log.Printf("Processing %d invoice image(s)", len(request.Images))

	response, err := h.invoiceService.AnalyzeBatch(&request)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to analyze invoices", err)
		return
	}

	log.Println("Invoice analysis completed")
	c.JSON(http.StatusOK, response)
}

// Upload handles POST /invoice/upload: multipart image or PDF files.
func (h *InvoiceHandler) Upload(c *gin.Context) {
	log.Println("Received invoice upload request")

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	log.Printf("Processing %d uploaded file(s)", len(files))

	response, err := h.invoiceService.AnalyzeUploads(files)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to analyze uploads", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GenerateGSTR1 handles POST /invoice/gstr1: aggregate analyzed invoices
// into a GSTR-1 summary and CSV export.
func (h *InvoiceHandler) GenerateGSTR1(c *gin.Context) {
	log.Println("Received GSTR-1 generation request")

	var request dto.GSTR1Request
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	response, err := h.reportService.GenerateGSTR1(request.Invoices)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to generate GSTR-1 report", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "ANALYSIS_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
