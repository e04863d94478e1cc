package models

// ReportColumn is one output column of a report definition. TypeRef points
// into the format-type lookup table served by the gateway.
type ReportColumn struct {
	Name    string `validate:"required"`
	Label   string
	TypeRef string
	Width   int
	Index   int
}

func (c *ReportColumn) Kind() CollectionKind { return KindReportColumn }

func (c *ReportColumn) NaturalKey() string { return c.Name }

func (c *ReportColumn) OrderIndex() int { return c.Index }

func (c *ReportColumn) SetOrderIndex(i int) { c.Index = i }

func (c *ReportColumn) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":        c.Name,
		"label":       c.Label,
		"type_ref":    c.TypeRef,
		"width":       c.Width,
		"order_index": c.Index,
	}
}

func ReportColumnFromFields(fields map[string]interface{}) *ReportColumn {
	return &ReportColumn{
		Name:    FieldString(fields, "name"),
		Label:   FieldString(fields, "label"),
		TypeRef: FieldString(fields, "type_ref"),
		Width:   FieldInt(fields, "width"),
		Index:   FieldInt(fields, "order_index"),
	}
}
