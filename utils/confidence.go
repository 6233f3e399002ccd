package utils

import (
	"regexp"

	"github.com/kirana-copilot/gst-invoice-ocr/dto"
)

var (
	gstinKeywordRegex   = regexp.MustCompile(`(?i)\bGSTIN\b`)
	invoiceKeywordRegex = regexp.MustCompile(`(?i)\b(?:invoice|bill)\b`)
	dateShapeRegex      = regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{2,4}`)
	gstTaxKeywordRegex  = regexp.MustCompile(`(?i)CGST|SGST|IGST`)
)

// ScoreConfidence scores how trustworthy an extraction result is.
// Structural signals (expected keywords present, non-zero amounts found)
// build a rule-based score that is then averaged with the OCR engine's own
// mean line confidence: rule hits can be spurious on garbled text, and raw
// OCR confidence says nothing about whether the right fields were found, so
// neither is trusted alone. Always in [0,1].
func ScoreConfidence(fullText string, lines []dto.OCRLine, data dto.InvoiceData) float64 {
	score := 0.5

	if gstinKeywordRegex.MatchString(fullText) {
		score += 0.15
	}
	if invoiceKeywordRegex.MatchString(fullText) {
		score += 0.1
	}
	if dateShapeRegex.MatchString(fullText) {
		score += 0.1
	}
	if gstTaxKeywordRegex.MatchString(fullText) {
		score += 0.1
	}

	if data.Total > 0 {
		score += 0.1
	}
	if data.TaxableAmount > 0 {
		score += 0.1
	}
	if data.GSTIN != dto.NotAvailable {
		score += 0.1
	}

	// Very few detected lines is the strongest signal of a bad scan.
	if len(lines) < 5 {
		score -= 0.2
	}

	if len(lines) > 0 {
		var sum float64
		for _, line := range lines {
			sum += line.Confidence
		}
		score = (score + sum/float64(len(lines))) / 2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
