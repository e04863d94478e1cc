package models

import (
	"github.com/shopspring/decimal"
)

// Totals is derived, never stored. Recomputed from line data on every read
// so displayed and persisted amounts cannot diverge.
type Totals struct {
	Subtotal  decimal.Decimal
	Freight   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalculateOrderTotals sums extended amounts over non-note lines and adds
// header freight, tax and any per-line freight. An empty collection yields a
// zero subtotal.
func CalculateOrderTotals(lines []*OrderLine, freight decimal.Decimal, taxAmount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	lineFreight := decimal.Zero
	for _, line := range lines {
		if line.Type == LineTypeNote {
			continue
		}
		subtotal = subtotal.Add(line.Extended())
		lineFreight = lineFreight.Add(line.Freight)
	}

	return Totals{
		Subtotal:  subtotal,
		Freight:   freight,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(freight).Add(taxAmount).Add(lineFreight),
	}
}
