package service

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/kirana-copilot/gst-invoice-ocr/dto"
)

// decodeEInvoiceQR reads the machine-readable QR code printed on GST
// e-invoices. When present it carries the seller GSTIN, document number,
// date and grand total exactly as registered with the invoice portal, so
// its values beat anything the OCR rule engine recovered.
func decodeEInvoiceQR(img image.Image) (*dto.EInvoiceQRData, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	qrReader := qrcode.NewQRCodeReader()
	result, err := qrReader.Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}

	var qrData dto.EInvoiceQRData
	if err := json.Unmarshal([]byte(result.GetText()), &qrData); err != nil {
		return nil, fmt.Errorf("failed to parse QR payload: %w", err)
	}

	if qrData.SellerGSTIN == "" && qrData.DocNo == "" {
		return nil, fmt.Errorf("QR payload is not an e-invoice")
	}

	return &qrData, nil
}
