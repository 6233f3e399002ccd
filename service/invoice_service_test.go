package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirana-copilot/gst-invoice-ocr/client"
	"github.com/kirana-copilot/gst-invoice-ocr/dto"
)

func blankImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func newTestService() *InvoiceService {
	return NewInvoiceService(client.NewTesseractClient("/tmp"), nil, NewPDFProcessor())
}

// stubOCRClient stands in for the Tesseract client. It crashes on small
// pages, mimicking a native recognizer fault mid-extraction.
type stubOCRClient struct {
	lines []dto.OCRLine
}

func (s *stubOCRClient) ExtractLines(filePath string) ([]dto.OCRLine, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() < 48 {
		panic("recognizer fault")
	}
	return s.lines, nil
}

func encodePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	service := newTestService()

	response, err := service.AnalyzeBatch(&dto.AnalyzeRequest{})
	assert.Nil(t, response)
	assert.ErrorIs(t, err, dto.ErrNoImages)
}

func TestAnalyzeBatchBadPagesProduceSentinels(t *testing.T) {
	service := newTestService()

	// One invalid base64 string, one valid base64 of non-image bytes, one
	// data-URL with garbage. Every page must still yield a record.
	request := &dto.AnalyzeRequest{
		Images: []string{
			"!!!not-base64!!!",
			"aGVsbG8gd29ybGQ=",
			"data:image/png;base64,!!!",
		},
	}

	response, err := service.AnalyzeBatch(request)
	require.NoError(t, err)
	require.Len(t, response.Invoices, 3)

	for i, inv := range response.Invoices {
		assert.Equal(t, "Image decode error", inv.Vendor, "page %d", i+1)
		assert.Equal(t, dto.NotAvailable, inv.GSTIN, "page %d", i+1)
		assert.Equal(t, 0.1, inv.Confidence, "page %d", i+1)
		assert.Equal(t, 0.0, inv.Total, "page %d", i+1)
	}

	// Records come back in input order.
	assert.Equal(t, "Invoice_1", response.Invoices[0].InvoiceNo)
	assert.Equal(t, "Invoice_2", response.Invoices[1].InvoiceNo)
	assert.Equal(t, "Invoice_3", response.Invoices[2].InvoiceNo)

	assert.Contains(t, response.Explanation, "Processed 3 invoice(s)")
	assert.Contains(t, response.Explanation, "3 need review")
}

func TestAnalyzeBatchPanicOnOnePageKeepsTheRest(t *testing.T) {
	lines := []dto.OCRLine{
		{Text: "Sharma Traders", Confidence: 0.9},
		{Text: "GSTIN: 27ABCDE1234F1Z5", Confidence: 0.9},
		{Text: "Invoice No: INV-101", Confidence: 0.9},
		{Text: "Date: 12/03/2024", Confidence: 0.9},
		{Text: "Total: Rs. 1180.00", Confidence: 0.9},
	}
	service := NewInvoiceService(&stubOCRClient{lines: lines}, nil, NewPDFProcessor())

	// The middle page trips the recognizer fault; the outer two are fine.
	request := &dto.AnalyzeRequest{
		Images: []string{
			encodePNG(t, blankImage(64, 64)),
			encodePNG(t, blankImage(32, 32)),
			encodePNG(t, blankImage(64, 64)),
		},
	}

	response, err := service.AnalyzeBatch(request)
	require.NoError(t, err)
	require.Len(t, response.Invoices, 3)

	failed := response.Invoices[1]
	assert.Equal(t, "Analysis error", failed.Vendor)
	assert.Equal(t, dto.NotAvailable, failed.GSTIN)
	assert.Equal(t, 0.2, failed.Confidence)
	assert.Equal(t, "Invoice_2", failed.InvoiceNo)

	for _, i := range []int{0, 2} {
		inv := response.Invoices[i]
		assert.Equal(t, "Sharma Traders", inv.Vendor, "page %d", i+1)
		assert.Equal(t, "27ABCDE1234F1Z5", inv.GSTIN, "page %d", i+1)
		assert.Equal(t, "INV-101", inv.InvoiceNo, "page %d", i+1)
		assert.Equal(t, 1180.0, inv.Total, "page %d", i+1)
	}
}

func TestBuildExplanation(t *testing.T) {
	invoices := []dto.InvoiceData{
		{Confidence: 0.95},
		{Confidence: 0.80},
		{Confidence: 0.50},
	}

	explanation := buildExplanation(invoices)
	assert.Equal(t,
		"Processed 3 invoice(s). 1 high confidence, 1 medium confidence, 1 need review.",
		explanation)
}

func TestApplyQRData(t *testing.T) {
	data := dto.InvoiceData{
		GSTIN:     dto.NotAvailable,
		InvoiceNo: "INV20240312120000",
		Date:      "01-01-2024",
	}
	qr := &dto.EInvoiceQRData{
		SellerGSTIN: "27abcde1234f1z5",
		DocNo:       "INV-42",
		DocDate:     "12/03/2024",
		TotalValue:  1180,
	}

	applyQRData(&data, qr)

	assert.Equal(t, "27ABCDE1234F1Z5", data.GSTIN)
	assert.Equal(t, "INV-42", data.InvoiceNo)
	assert.Equal(t, "12-03-2024", data.Date)
	assert.Equal(t, 1180.0, data.Total)
}

func TestApplyQRDataKeepsExtractedValues(t *testing.T) {
	data := dto.InvoiceData{
		GSTIN: "29ZYXWV9876K1Z9",
		Total: 2500,
	}

	applyQRData(&data, &dto.EInvoiceQRData{SellerGSTIN: "27ABCDE1234F1Z5", TotalValue: 1180})

	assert.Equal(t, "29ZYXWV9876K1Z9", data.GSTIN)
	assert.Equal(t, 2500.0, data.Total)
}

func TestDecodeEInvoiceQR(t *testing.T) {
	payload, err := json.Marshal(dto.EInvoiceQRData{
		SellerGSTIN: "27ABCDE1234F1Z5",
		DocNo:       "INV-42",
		DocDate:     "12/03/2024",
		TotalValue:  1180,
	})
	require.NoError(t, err)

	writer := qrcode.NewQRCodeWriter()
	img, err := writer.Encode(string(payload), gozxing.BarcodeFormat_QR_CODE, 300, 300, nil)
	require.NoError(t, err)

	qrData, err := decodeEInvoiceQR(img)
	require.NoError(t, err)
	assert.Equal(t, "27ABCDE1234F1Z5", qrData.SellerGSTIN)
	assert.Equal(t, "INV-42", qrData.DocNo)
	assert.Equal(t, 1180.0, qrData.TotalValue)
}

func TestDecodeEInvoiceQRNoCode(t *testing.T) {
	_, err := decodeEInvoiceQR(blankImage(64, 64))
	assert.Error(t, err)
}

func TestLinesFromText(t *testing.T) {
	lines := linesFromText("Sharma Traders\n\n  Invoice No: 42  \n")

	require.Len(t, lines, 2)
	assert.Equal(t, "Sharma Traders", lines[0].Text)
	assert.Equal(t, "Invoice No: 42", lines[1].Text)
	for _, line := range lines {
		assert.Equal(t, 1.0, line.Confidence)
	}
}
