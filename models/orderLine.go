package models

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/oakarsoft/draftdesk_backend/utils"
)

// OrderLine is one purchase/sales order line. Regular lines are matched by
// part code; note lines carry no quantities and are matched by position.
type OrderLine struct {
	PartCode    string
	Description string
	Type        LineType
	Source      LineSource
	Qty         decimal.Decimal
	UnitRate    decimal.Decimal
	Discount    decimal.Decimal
	Freight     decimal.Decimal
	ReceivedQty decimal.Decimal
	Index       int
}

func NewRegularLine(partCode string, qty decimal.Decimal, rate decimal.Decimal, discount decimal.Decimal) *OrderLine {
	return &OrderLine{
		PartCode: partCode,
		Type:     LineTypeRegular,
		Source:   LineSourceActive,
		Qty:      qty,
		UnitRate: rate,
		Discount: discount,
	}
}

func NewNoteLine(text string) *OrderLine {
	return &OrderLine{
		Description: text,
		Type:        LineTypeNote,
		Source:      LineSourceActive,
	}
}

func (l *OrderLine) Kind() CollectionKind { return KindOrderLine }

func (l *OrderLine) NaturalKey() string {
	if l.Type == LineTypeNote {
		return NoteKey(l.Index)
	}
	return l.PartCode
}

func (l *OrderLine) OrderIndex() int { return l.Index }

func (l *OrderLine) SetOrderIndex(i int) { l.Index = i }

// Locked reports whether the line's core fields are frozen: any received
// quantity, or a line loaded from order history.
func (l *OrderLine) Locked() bool {
	return l.ReceivedQty.GreaterThan(decimal.Zero) || l.Source == LineSourceHistorical
}

// Extended is qty * (rate - discount). Note lines never contribute.
func (l *OrderLine) Extended() decimal.Decimal {
	if l.Type == LineTypeNote {
		return decimal.Zero
	}
	return utils.CalculateExtendedAmount(l.Qty, l.UnitRate, l.Discount)
}

func (l *OrderLine) Fields() map[string]interface{} {
	return map[string]interface{}{
		"part_code":       l.PartCode,
		"description":     l.Description,
		"line_type":       string(l.Type),
		"source":          string(l.Source),
		"quantity":        l.Qty.String(),
		"unit_rate":       l.UnitRate.String(),
		"discount":        l.Discount.String(),
		"freight":         l.Freight.String(),
		"received_qty":    l.ReceivedQty.String(),
		"extended_amount": l.Extended().String(),
		"order_index":     l.Index,
	}
}

func OrderLineFromFields(fields map[string]interface{}) *OrderLine {
	line := &OrderLine{
		PartCode:    FieldString(fields, "part_code"),
		Description: FieldString(fields, "description"),
		Type:        LineType(FieldString(fields, "line_type")),
		Source:      LineSource(FieldString(fields, "source")),
		Qty:         FieldDecimal(fields, "quantity"),
		UnitRate:    FieldDecimal(fields, "unit_rate"),
		Discount:    FieldDecimal(fields, "discount"),
		Freight:     FieldDecimal(fields, "freight"),
		ReceivedQty: FieldDecimal(fields, "received_qty"),
		Index:       FieldInt(fields, "order_index"),
	}
	if line.Type == "" {
		line.Type = LineTypeRegular
	}
	if line.Source == "" {
		line.Source = LineSourceActive
	}
	return line
}
