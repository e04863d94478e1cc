package models

// ReportVariable is one runtime parameter of a report definition, either
// added by the user or autodetected from the report query.
type ReportVariable struct {
	Name         string `validate:"required"`
	Label        string
	DataType     string
	DefaultValue string
	Index        int
}

func (v *ReportVariable) Kind() CollectionKind { return KindReportVariable }

func (v *ReportVariable) NaturalKey() string { return v.Name }

func (v *ReportVariable) OrderIndex() int { return v.Index }

func (v *ReportVariable) SetOrderIndex(i int) { v.Index = i }

func (v *ReportVariable) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":          v.Name,
		"label":         v.Label,
		"data_type":     v.DataType,
		"default_value": v.DefaultValue,
		"order_index":   v.Index,
	}
}

func ReportVariableFromFields(fields map[string]interface{}) *ReportVariable {
	return &ReportVariable{
		Name:         FieldString(fields, "name"),
		Label:        FieldString(fields, "label"),
		DataType:     FieldString(fields, "data_type"),
		DefaultValue: FieldString(fields, "default_value"),
		Index:        FieldInt(fields, "order_index"),
	}
}
