package models

import (
	"github.com/shopspring/decimal"
)

// OrderHeader carries the order-level inputs of the totals calculation plus
// the parent key that scopes the line collection at the gateway.
type OrderHeader struct {
	PONumber     string `validate:"required"`
	SupplierName string `validate:"required"`
	Freight      decimal.Decimal
	TaxAmount    decimal.Decimal
	Notes        string
}

// ReportHeader scopes report column/variable collections.
type ReportHeader struct {
	ReportID string `validate:"required"`
	Name     string `validate:"required"`
	Query    string
}
