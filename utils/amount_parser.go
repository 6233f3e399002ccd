package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Amount extraction is restricted to the tail of the document, where the
// summary section of an invoice conventionally sits; matching the whole text
// picks up line-item quantities and phone numbers instead.
const amountSearchWindow = 2500

// Sanity window for extracted amounts. Values outside are treated as OCR
// noise (page numbers, phone digits) and rejected as "not found".
const (
	minPlausibleAmount = 0.01
	maxPlausibleAmount = 1e8
)

const (
	fieldTaxable = "taxable"
	fieldCGST    = "cgst"
	fieldSGST    = "sgst"
	fieldIGST    = "igst"
	fieldTotal   = "total"
)

// Per-field cascades, most specific label first. Evaluated in order with
// first-success-wins semantics; within a pattern the last match wins because
// summary totals follow the line-item breakdown.
var amountPatterns = map[string][]*regexp.Regexp{
	fieldTaxable: {
		regexp.MustCompile(`(?s)TAXABLE.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)SUB[\s-]*TOTAL.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)BASE\s*(?:AMOUNT)?.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)AMOUNT.*?TAXABLE.*?([\d,]+\.?\d*)`),
	},
	fieldCGST: {
		regexp.MustCompile(`(?s)CGST\s*AMOUNT.*?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)CGST.*?(?:RS\.?|₹|INR|@)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)C\.G\.S\.T.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)CENTRAL.*?GST.*?([\d,]+\.?\d*)`),
	},
	fieldSGST: {
		regexp.MustCompile(`(?s)SGST\s*AMOUNT.*?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)SGST.*?(?:RS\.?|₹|INR|@)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)S\.G\.S\.T.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)STATE.*?GST.*?([\d,]+\.?\d*)`),
	},
	fieldIGST: {
		regexp.MustCompile(`(?s)IGST\s*AMOUNT.*?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)IGST.*?(?:RS\.?|₹|INR|@)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)I\.G\.S\.T.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)INTEGRATED.*?GST.*?([\d,]+\.?\d*)`),
	},
	fieldTotal: {
		regexp.MustCompile(`(?s)(?:GRAND|FINAL)\s*TOTAL.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)TOTAL\s*(?:AMOUNT|PAYABLE)?.*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)NET\s*(?:AMOUNT|PAYABLE).*?(?:RS\.?|₹|INR)?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?s)AMOUNT\s*PAYABLE.*?([\d,]+\.?\d*)`),
	},
}

// Keywords for the proximity fallback when no label pattern matched.
var amountKeywords = map[string][]string{
	fieldTaxable: {"TAXABLE", "SUBTOTAL", "SUB TOTAL"},
	fieldCGST:    {"CGST", "C.G.S.T", "CENTRAL GST"},
	fieldSGST:    {"SGST", "S.G.S.T", "STATE GST"},
	fieldIGST:    {"IGST", "I.G.S.T", "INTEGRATED GST"},
	fieldTotal:   {"TOTAL", "GRAND TOTAL", "NET AMOUNT"},
}

var numberTokenRegex = regexp.MustCompile(`[\d,]+\.?\d*`)

// extractAmount runs the ordered pattern cascade for one monetary field over
// the tail of the text. Returns 0 when nothing plausible is found.
func extractAmount(text, field string) float64 {
	search := amountSearchText(text)

	for _, pattern := range amountPatterns[field] {
		matches := pattern.FindAllStringSubmatch(search, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			if amount, ok := parseAmount(matches[i][1]); ok {
				return amount
			}
		}
	}

	// Keyword proximity fallback: any well-formed number within 100 chars
	// after the keyword's last occurrence.
	for _, keyword := range amountKeywords[field] {
		pos := strings.LastIndex(search, keyword)
		if pos < 0 {
			continue
		}

		end := pos + len(keyword) + 100
		if end > len(search) {
			end = len(search)
		}

		for _, token := range numberTokenRegex.FindAllString(search[pos:end], -1) {
			if amount, ok := parseAmount(token); ok {
				return amount
			}
		}
	}

	return 0.0
}

// The middle figure of a sorted TOTAL row is only trusted as tax if it is
// well below the grand total. Tunable, not a contract.
const summaryTaxMaxShare = 0.5

// Summary row candidates, most to least structured. Rows look like
// "TOTAL 50.00 180.00 2180.00" (discount, tax, grand total in some order).
var summaryRowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`TOTAL\s*:?\s*(?:RS\.?|INR|₹)?\s*([\d,]+\.?\d*)\s+(?:RS\.?|INR|₹)?\s*([\d,]+\.?\d*)\s+(?:RS\.?|INR|₹)?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`TOTAL[^\d]{0,12}([\d,]+\.?\d*)[^\d]{1,15}([\d,]+\.?\d*)[^\d]{1,15}([\d,]+\.?\d*)`),
}

// extractTotalTaxFromSummary reads the aggregate tax figure out of a
// three-number TOTAL row. Per-type tax labels are frequently garbled in poor
// scans while the summary row survives, so this is the reconciliation
// fallback of last resort. The three captured numbers are sorted; smallest
// is taken as discount, largest as grand total, and the middle as tax. The
// middle is accepted only when it is less than half the largest.
func extractTotalTaxFromSummary(text string) float64 {
	search := amountSearchText(text)

	for _, pattern := range summaryRowPatterns {
		matches := pattern.FindAllStringSubmatch(search, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			if tax, ok := summaryRowTax(matches[i][1:4]); ok {
				return tax
			}
		}
	}

	// Loosest form: any three numeric tokens shortly after the last TOTAL.
	pos := strings.LastIndex(search, "TOTAL")
	if pos < 0 {
		return 0.0
	}

	end := pos + 125
	if end > len(search) {
		end = len(search)
	}

	tokens := numberTokenRegex.FindAllString(search[pos:end], -1)
	if len(tokens) < 3 {
		return 0.0
	}

	if tax, ok := summaryRowTax(tokens[:3]); ok {
		return tax
	}
	return 0.0
}

func summaryRowTax(tokens []string) (float64, bool) {
	values := make([]float64, 0, 3)
	for _, token := range tokens {
		v, ok := parseAmount(token)
		if !ok {
			return 0, false
		}
		values = append(values, v)
	}

	// Ascending: discount, tax, grand total.
	if values[0] > values[1] {
		values[0], values[1] = values[1], values[0]
	}
	if values[1] > values[2] {
		values[1], values[2] = values[2], values[1]
	}
	if values[0] > values[1] {
		values[0], values[1] = values[1], values[0]
	}

	if values[1] < values[2]*summaryTaxMaxShare {
		return values[1], true
	}
	return 0, false
}

// amountSearchText uppercases the tail slice all monetary matching runs on.
// The cut is widened to the previous rune boundary so a currency symbol
// straddling the window edge never leaves invalid UTF-8 in the search text.
func amountSearchText(text string) string {
	upper := strings.ToUpper(text)
	if len(upper) <= amountSearchWindow {
		return upper
	}

	start := len(upper) - amountSearchWindow
	for start > 0 && !utf8.RuneStart(upper[start]) {
		start--
	}
	return upper[start:]
}

// parseAmount converts a matched token to a float, rejecting anything
// outside the plausible invoice range.
func parseAmount(token string) (float64, bool) {
	cleaned := strings.ReplaceAll(token, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if amount < minPlausibleAmount || amount >= maxPlausibleAmount {
		return 0, false
	}
	return amount, true
}
