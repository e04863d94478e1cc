package workflow

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/oakarsoft/draftdesk_backend/models"
)

// LineState classifies one order line for the UI: locked lines reject field
// edits and removal. A line locks only as a side effect of receiving (or by
// coming from order history), never by a local mutation.
type LineState struct {
	Editable bool
	Reason   string
}

func ClassifyLine(line *models.OrderLine) LineState {
	if line.Source == models.LineSourceHistorical {
		return LineState{Editable: false, Reason: "line is from order history"}
	}
	if line.ReceivedQty.GreaterThan(decimal.Zero) {
		return LineState{Editable: false, Reason: "line is partially received"}
	}
	return LineState{Editable: true}
}

// ClassifyOrderStatus rolls per-line received quantities up into the order
// status. Note lines carry no quantity and are ignored.
func ClassifyOrderStatus(lines []*models.OrderLine) models.OrderStatus {
	sawRegular := false
	anyReceived := false
	allReceived := true

	for _, line := range lines {
		if line.Type == models.LineTypeNote {
			continue
		}
		sawRegular = true
		if line.ReceivedQty.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
		if line.ReceivedQty.LessThan(line.Qty) {
			allReceived = false
		}
	}

	switch {
	case sawRegular && anyReceived && allReceived:
		return models.OrderStatusReceived
	case anyReceived:
		return models.OrderStatusPartiallyReceived
	default:
		return models.OrderStatusOpen
	}
}
