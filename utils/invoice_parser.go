package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirana-copilot/gst-invoice-ocr/dto"
)

// ParseInvoice extracts structured GST invoice data from OCR output.
// fullText is the space-joined concatenation of all detected lines; lines
// carry the per-line recognition confidence used for vendor detection and
// the final confidence score. The function is total: every field falls back
// to a typed default, so it never fails.
func ParseInvoice(fullText string, lines []dto.OCRLine) dto.InvoiceData {
	data := dto.InvoiceData{
		Vendor:    extractVendor(lines),
		GSTIN:     extractGSTIN(fullText),
		InvoiceNo: extractInvoiceNumber(fullText),
		Date:      extractDate(fullText),
	}

	data.TaxableAmount, data.CGST, data.SGST, data.IGST, data.Total = resolveAmounts(fullText)
	data.Confidence = ScoreConfidence(fullText, lines, data)

	return data
}

var vendorRejectRegex = regexp.MustCompile(`(?i)\d{4,}|invoice|bill|date`)

// extractVendor picks the vendor/supplier name from the top of the document.
// The name is assumed to appear within the first 5 detected lines; headers
// that look like invoice numbers or dates are skipped. Original case is kept
// so Devanagari vendor names survive.
func extractVendor(lines []dto.OCRLine) string {
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}

	for _, line := range lines[:limit] {
		text := strings.TrimSpace(line.Text)
		if utf8.RuneCountInString(text) > 3 && line.Confidence > 0.5 && !vendorRejectRegex.MatchString(text) {
			return text
		}
	}

	return dto.NotAvailable
}

var (
	// Canonical 15-character GSTIN: state code, PAN, entity number, Z, checksum.
	gstinStrictRegex = regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]\b`)
	// Fallback for OCR-garbled identifiers sitting next to the GSTIN label.
	gstinLabelRegex = regexp.MustCompile(`GSTIN[:\s]*([A-Z0-9]{15})`)
)

func extractGSTIN(text string) string {
	upper := strings.ToUpper(text)

	if match := gstinStrictRegex.FindString(upper); match != "" {
		return match
	}

	if matches := gstinLabelRegex.FindStringSubmatch(upper); len(matches) > 1 {
		return matches[1]
	}

	return dto.NotAvailable
}

var (
	invoiceNoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|#)[:\s]*([A-Z0-9/-]+)`),
		regexp.MustCompile(`(?i)bill\s*(?:no\.?|number|#)[:\s]*([A-Z0-9/-]+)`),
		regexp.MustCompile(`(?i)voucher\s*(?:no\.?|number)[:\s]*([A-Z0-9/-]+)`),
	}
	invoiceNoLooseRegex = regexp.MustCompile(`\b[A-Z]{2,4}[/-]?\d{4,}\b`)
)

// extractInvoiceNumber runs the label cascade, then the loose letters+digits
// heuristic. If nothing matches, a synthetic INV<timestamp> number is issued
// so downstream joins always have a key; callers can detect the synthetic
// shape by the INV prefix and 14-digit suffix.
func extractInvoiceNumber(text string) string {
	for _, pattern := range invoiceNoPatterns {
		if matches := pattern.FindStringSubmatch(text); len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}

	if match := invoiceNoLooseRegex.FindString(text); match != "" {
		return match
	}

	return "INV" + time.Now().Format("20060102150405")
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`), // DD/MM/YYYY
	regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2})\b`), // DD/MM/YY
	regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`), // YYYY/MM/DD
}

// extractDate finds the invoice date and normalizes it to DD-MM-YYYY.
// Two-digit years are promoted to 20YY. When no date-shaped token exists the
// current date is returned as a synthetic default, not a parse result.
func extractDate(text string) string {
	for _, pattern := range datePatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) < 4 {
			continue
		}

		if len(matches[1]) == 4 { // YYYY/MM/DD
			return padDayMonth(matches[3]) + "-" + padDayMonth(matches[2]) + "-" + matches[1]
		}

		year := matches[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return padDayMonth(matches[1]) + "-" + padDayMonth(matches[2]) + "-" + year
	}

	return time.Now().Format("02-01-2006")
}

func padDayMonth(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
