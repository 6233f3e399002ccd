package utils

import (
	"math"
	"strings"
)

// resolveAmounts turns partial, independently extracted monetary evidence
// into a mutually consistent (taxable, cgst, sgst, igst, total) tuple.
//
// Priority order: direct total, direct per-type taxes, summary-row tax with
// an even intra-state split, taxable derived as total minus tax. When the
// per-type breakdown and the summary row both fail but total and taxable are
// known, the gap between them is taken as tax. Indian invoices tax either
// intra-state (symmetric CGST+SGST) or inter-state (single IGST); without a
// readable breakdown the even split is the unbiased estimate, and the
// confidence score surfaces it for review rather than trusting it silently.
func resolveAmounts(fullText string) (taxable, cgst, sgst, igst, total float64) {
	total = extractAmount(fullText, fieldTotal)

	cgst = extractAmount(fullText, fieldCGST)
	sgst = extractAmount(fullText, fieldSGST)
	igst = extractAmount(fullText, fieldIGST)
	totalTax := cgst + sgst + igst

	if totalTax == 0 {
		if tax := extractTotalTaxFromSummary(fullText); tax > 0 {
			cgst = round2(tax / 2)
			sgst = cgst
			igst = 0
			totalTax = tax
		}
	}

	if total > 0 && totalTax > 0 {
		taxable = total - totalTax
		if taxable < 0 {
			// Tax exceeding the grand total means one of the two is noise;
			// fall back to the taxable field's own cascade.
			taxable = extractAmount(fullText, fieldTaxable)
		}
	} else {
		taxable = extractAmount(fullText, fieldTaxable)
	}

	// No readable tax anywhere, but total and taxable bracket it.
	if totalTax == 0 && total > taxable && taxable > 0 {
		tax := total - taxable
		if strings.Contains(strings.ToUpper(fullText), "IGST") {
			igst = tax
		} else {
			cgst = round2(tax / 2)
			sgst = cgst
		}
		totalTax = tax
	}

	if total == 0 && taxable > 0 {
		total = taxable + totalTax
	}

	return round2(taxable), round2(cgst), round2(sgst), round2(igst), round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
