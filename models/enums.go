package models

// CollectionKind names one reconcilable draft collection. The value doubles
// as the gateway model name.
type CollectionKind string

const (
	KindReportColumn   CollectionKind = "report_columns"
	KindReportVariable CollectionKind = "report_variables"
	KindOrderLine      CollectionKind = "order_lines"
)

type LineType string

const (
	LineTypeRegular LineType = "R"
	LineTypeNote    LineType = "N"
)

type LineSource string

const (
	LineSourceActive     LineSource = "active"
	LineSourceHistorical LineSource = "historical"
)

type OrderStatus string

const (
	OrderStatusOpen              OrderStatus = "Open"
	OrderStatusPartiallyReceived OrderStatus = "Partially Received"
	OrderStatusReceived          OrderStatus = "Received"
)
