package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAmounts(t *testing.T) {
	t.Run("taxable derived from total minus taxes", func(t *testing.T) {
		text := "CGST Rs. 90.00 SGST Rs. 90.00 GRAND TOTAL Rs. 1180.00"

		taxable, cgst, sgst, igst, total := resolveAmounts(text)

		assert.Equal(t, 1000.00, taxable)
		assert.Equal(t, 90.00, cgst)
		assert.Equal(t, 90.00, sgst)
		assert.Equal(t, 0.00, igst)
		assert.Equal(t, 1180.00, total)
		assert.InDelta(t, total, taxable+cgst+sgst+igst, 0.01)
	})

	t.Run("total derived from taxable plus taxes", func(t *testing.T) {
		text := "TAXABLE AMOUNT Rs. 1000.00 CGST Rs. 90.00 SGST Rs. 90.00"

		taxable, cgst, sgst, igst, total := resolveAmounts(text)

		assert.Equal(t, 1000.00, taxable)
		assert.Equal(t, 1180.00, total)
		assert.InDelta(t, total, taxable+cgst+sgst+igst, 0.01)
	})

	t.Run("summary row split evenly when per-type labels are garbled", func(t *testing.T) {
		text := "CG5T S6ST unreadable TOTAL 50 180 2180 GRAND TOTAL 2180.00"

		taxable, cgst, sgst, igst, total := resolveAmounts(text)

		assert.Equal(t, 90.00, cgst)
		assert.Equal(t, 90.00, sgst)
		assert.Equal(t, 0.00, igst)
		assert.Equal(t, 2180.00, total)
		assert.Equal(t, 2000.00, taxable)
		assert.InDelta(t, total, taxable+cgst+sgst+igst, 0.01)
	})

	t.Run("tax bridged from total and taxable gap intra-state", func(t *testing.T) {
		text := "TAXABLE VALUE Rs. 1000.00 thanks NET PAYABLE Rs. 1180.00"

		taxable, cgst, sgst, igst, total := resolveAmounts(text)

		assert.Equal(t, 1000.00, taxable)
		assert.Equal(t, 90.00, cgst)
		assert.Equal(t, 90.00, sgst)
		assert.Equal(t, 0.00, igst)
		assert.Equal(t, 1180.00, total)
	})

	t.Run("tax bridged from total and taxable gap inter-state", func(t *testing.T) {
		// The IGST column itself is unreadable, but the keyword marks the
		// transaction as inter-state.
		text := "TAXABLE VALUE Rs. 1000.00 NET PAYABLE Rs. 1180.00 IGST illegible"

		taxable, cgst, sgst, igst, total := resolveAmounts(text)

		assert.Equal(t, 1000.00, taxable)
		assert.Equal(t, 0.00, cgst)
		assert.Equal(t, 0.00, sgst)
		assert.Equal(t, 180.00, igst)
		assert.Equal(t, 1180.00, total)
	})

	t.Run("nothing extractable yields zeros", func(t *testing.T) {
		taxable, cgst, sgst, igst, total := resolveAmounts("handwritten note")

		assert.Equal(t, 0.0, taxable)
		assert.Equal(t, 0.0, cgst)
		assert.Equal(t, 0.0, sgst)
		assert.Equal(t, 0.0, igst)
		assert.Equal(t, 0.0, total)
	})
}
