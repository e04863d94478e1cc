package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateExtendedAmount returns qty * (rate - discount) for one line.
// Discount is a per-unit amount. Negative inputs propagate; clamping is the
// input boundary's job, not the calculator's.
func CalculateExtendedAmount(qty decimal.Decimal, rate decimal.Decimal, discount decimal.Decimal) decimal.Decimal {
	return qty.Mul(rate.Sub(discount))
}
