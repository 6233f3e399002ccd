package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/kirana-copilot/gst-invoice-ocr/client"
	"github.com/kirana-copilot/gst-invoice-ocr/dto"
	"github.com/kirana-copilot/gst-invoice-ocr/utils"
)

// OCRClient produces confidence-scored text lines from an image file on
// disk. Satisfied by client.TesseractClient.
type OCRClient interface {
	ExtractLines(filePath string) ([]dto.OCRLine, error)
}

// InvoiceService orchestrates OCR and field extraction for invoice batches.
// Each page is analyzed independently: one bad page degrades into a
// low-confidence sentinel record and never blocks or corrupts the rest.
type InvoiceService struct {
	ocrClient    OCRClient
	paddleClient *client.PaddleClient
	pdfProcessor PDFProcessor
}

func NewInvoiceService(
	ocrClient OCRClient,
	paddleClient *client.PaddleClient,
	pdfProcessor PDFProcessor,
) *InvoiceService {
	return &InvoiceService{
		ocrClient:    ocrClient,
		paddleClient: paddleClient,
		pdfProcessor: pdfProcessor,
	}
}

// AnalyzeBatch processes a batch of base64-encoded invoice images and
// returns one record per image, in input order.
func (s *InvoiceService) AnalyzeBatch(req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if len(req.Images) == 0 {
		return nil, dto.ErrNoImages
	}

	results := make([]dto.InvoiceData, len(req.Images))
	var wg sync.WaitGroup

	for idx, encoded := range req.Images {
		wg.Add(1)
		go func(idx int, encoded string) {
			defer wg.Done()
			results[idx] = s.analyzeEncodedImage(idx, encoded)
		}(idx, encoded)
	}

	wg.Wait()

	return &dto.AnalyzeResponse{
		Invoices:    results,
		Explanation: buildExplanation(results),
	}, nil
}

// analyzeEncodedImage never fails: decode problems and analysis blowups are
// converted into sentinel records so batch position idx is always filled.
func (s *InvoiceService) analyzeEncodedImage(idx int, encoded string) (result dto.InvoiceData) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Invoice %d analysis panic: %v", idx+1, r)
			result = sentinelRecord(idx, "Analysis error", 0.2)
		}
	}()

	// Strip data-URL prefix if the frontend sent one.
	if comma := strings.IndexByte(encoded, ','); comma >= 0 {
		encoded = encoded[comma+1:]
	}

	imageData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Printf("Invoice %d: base64 decode failed: %v", idx+1, err)
		return sentinelRecord(idx, "Image decode error", 0.1)
	}

	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		log.Printf("Invoice %d: image decode failed: %v", idx+1, err)
		return sentinelRecord(idx, "Image decode error", 0.1)
	}

	data, err := s.analyzeImage(img)
	if err != nil {
		log.Printf("Invoice %d: analysis failed: %v", idx+1, err)
		return sentinelRecord(idx, "Analysis error", 0.2)
	}

	data.ID = recordID(idx)
	return data
}

// AnalyzeUploads processes multipart uploads (images or PDFs). A PDF may
// yield several records, one per scanned page.
func (s *InvoiceService) AnalyzeUploads(files []*multipart.FileHeader) (*dto.AnalyzeResponse, error) {
	if len(files) == 0 {
		return nil, dto.ErrNoImages
	}

	perFile := make([][]dto.InvoiceData, len(files))
	var wg sync.WaitGroup

	for idx, fileHeader := range files {
		wg.Add(1)
		go func(idx int, fileHeader *multipart.FileHeader) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Upload %s analysis panic: %v", fileHeader.Filename, r)
					perFile[idx] = []dto.InvoiceData{sentinelRecord(idx, "Analysis error", 0.2)}
				}
			}()
			perFile[idx] = s.analyzeUpload(idx, fileHeader)
		}(idx, fileHeader)
	}

	wg.Wait()

	var results []dto.InvoiceData
	for _, records := range perFile {
		results = append(results, records...)
	}

	return &dto.AnalyzeResponse{
		Invoices:    results,
		Explanation: buildExplanation(results),
	}, nil
}

func (s *InvoiceService) analyzeUpload(idx int, fileHeader *multipart.FileHeader) []dto.InvoiceData {
	f, err := fileHeader.Open()
	if err != nil {
		log.Printf("Failed to open upload %s: %v", fileHeader.Filename, err)
		return []dto.InvoiceData{sentinelRecord(idx, "Image decode error", 0.1)}
	}
	defer f.Close()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		log.Printf("Failed to read upload %s: %v", fileHeader.Filename, err)
		return []dto.InvoiceData{sentinelRecord(idx, "Image decode error", 0.1)}
	}

	if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return s.analyzePDF(idx, fileHeader.Filename, fileBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		log.Printf("Upload %s: image decode failed: %v", fileHeader.Filename, err)
		return []dto.InvoiceData{sentinelRecord(idx, "Image decode error", 0.1)}
	}

	data, err := s.analyzeImage(img)
	if err != nil {
		log.Printf("Upload %s: analysis failed: %v", fileHeader.Filename, err)
		return []dto.InvoiceData{sentinelRecord(idx, "Analysis error", 0.2)}
	}

	data.ID = recordID(idx)
	return []dto.InvoiceData{data}
}

func (s *InvoiceService) analyzePDF(idx int, filename string, pdfData []byte) []dto.InvoiceData {
	// Digital PDFs carry exact embedded text; no OCR needed.
	text, err := s.pdfProcessor.ExtractText(pdfData)
	if err != nil {
		log.Printf("PDF text extraction failed for %s: %v", filename, err)
	}

	if len(strings.TrimSpace(text)) >= 20 {
		lines := linesFromText(text)
		data := utils.ParseInvoice(client.JoinLines(lines), lines)
		data.ID = recordID(idx)
		return []dto.InvoiceData{data}
	}

	// Scanned PDF: OCR each extracted page image separately.
	log.Printf("PDF %s has minimal embedded text, falling back to page-image OCR", filename)
	images, err := s.pdfProcessor.ExtractImages(pdfData)
	if err != nil || len(images) == 0 {
		log.Printf("Failed to extract images from PDF %s: %v", filename, err)
		return []dto.InvoiceData{sentinelRecord(idx, "Image decode error", 0.1)}
	}

	records := make([]dto.InvoiceData, 0, len(images))
	for _, img := range images {
		data, err := s.analyzeImage(img)
		if err != nil {
			log.Printf("PDF %s: page analysis failed: %v", filename, err)
			records = append(records, sentinelRecord(idx, "Analysis error", 0.2))
			continue
		}
		data.ID = recordID(idx)
		records = append(records, data)
	}

	return records
}

// analyzeImage runs the full pipeline on one page image: enhancement, OCR
// with Paddle fallback, rule-based extraction, e-invoice QR overlay.
func (s *InvoiceService) analyzeImage(img image.Image) (dto.InvoiceData, error) {
	tempFile, err := saveImageToTempFile(enhanceForOCR(img))
	if err != nil {
		return dto.InvoiceData{}, fmt.Errorf("failed to save temp image: %w", err)
	}
	defer os.Remove(tempFile)

	lines, err := s.ocrClient.ExtractLines(tempFile)
	if err != nil || len(lines) < 3 {
		lines, err = s.paddleFallback(img, lines, err)
		if err != nil {
			return dto.InvoiceData{}, err
		}
	}

	fullText := client.JoinLines(lines)
	data := utils.ParseInvoice(fullText, lines)

	// The e-invoice QR payload, when readable, is authoritative for the
	// identifiers it carries.
	if qrData, qrErr := decodeEInvoiceQR(img); qrErr == nil {
		applyQRData(&data, qrData)
		data.Confidence = utils.ScoreConfidence(fullText, lines, data)
	}

	return data, nil
}

// paddleFallback retries OCR through PaddleOCR when Tesseract failed or
// detected almost nothing. Whatever Tesseract did find is kept if Paddle
// cannot do better.
func (s *InvoiceService) paddleFallback(img image.Image, tessLines []dto.OCRLine, tessErr error) ([]dto.OCRLine, error) {
	if s.paddleClient == nil {
		if tessErr != nil {
			return nil, fmt.Errorf("OCR failed: %w", tessErr)
		}
		return tessLines, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if tessErr != nil {
			return nil, fmt.Errorf("OCR failed: %w", tessErr)
		}
		return tessLines, nil
	}

	paddleLines, err := s.paddleClient.ExtractLines(buf.Bytes())
	if err != nil || len(paddleLines) <= len(tessLines) {
		if tessErr != nil && err != nil {
			return nil, fmt.Errorf("OCR failed: %w", tessErr)
		}
		return tessLines, nil
	}

	return paddleLines, nil
}

// applyQRData overlays machine-readable e-invoice fields onto the record
// where the rule engine came up empty or synthetic.
func applyQRData(data *dto.InvoiceData, qr *dto.EInvoiceQRData) {
	if data.GSTIN == dto.NotAvailable && qr.SellerGSTIN != "" {
		data.GSTIN = strings.ToUpper(qr.SellerGSTIN)
	}
	if qr.DocNo != "" {
		data.InvoiceNo = qr.DocNo
	}
	if qr.DocDate != "" {
		data.Date = strings.ReplaceAll(qr.DocDate, "/", "-")
	}
	if data.Total == 0 && qr.TotalValue > 0 {
		data.Total = qr.TotalValue
	}
}

// enhanceForOCR preprocesses a scan for better recognition: grayscale for
// contrast, then contrast boost and sharpening to firm up glyph edges.
func enhanceForOCR(img image.Image) image.Image {
	enhanced := imaging.Grayscale(img)
	enhanced = imaging.AdjustContrast(enhanced, 30)
	enhanced = imaging.Sharpen(enhanced, 1.5)
	return enhanced
}

// sentinelRecord is the placeholder produced when a page cannot be
// analyzed. All fields carry typed defaults so aggregation still works.
func sentinelRecord(idx int, vendor string, confidence float64) dto.InvoiceData {
	return dto.InvoiceData{
		ID:         recordID(idx),
		Vendor:     vendor,
		GSTIN:      dto.NotAvailable,
		InvoiceNo:  fmt.Sprintf("Invoice_%d", idx+1),
		Date:       time.Now().Format("02-01-2006"),
		Confidence: confidence,
	}
}

func recordID(idx int) string {
	return fmt.Sprintf("inv_%d_%d", time.Now().UnixMilli(), idx)
}

// linesFromText adapts embedded PDF text to the OCR line shape. Embedded
// text is exact, so every line gets full confidence.
func linesFromText(text string) []dto.OCRLine {
	var lines []dto.OCRLine
	for _, row := range strings.Split(text, "\n") {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		lines = append(lines, dto.OCRLine{Text: row, Confidence: 1.0})
	}
	return lines
}

func buildExplanation(invoices []dto.InvoiceData) string {
	var high, medium, low int
	for _, inv := range invoices {
		switch {
		case inv.Confidence >= 0.9:
			high++
		case inv.Confidence >= 0.7:
			medium++
		default:
			low++
		}
	}

	return fmt.Sprintf(
		"Processed %d invoice(s). %d high confidence, %d medium confidence, %d need review.",
		len(invoices), high, medium, low,
	)
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "invoice-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
