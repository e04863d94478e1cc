// Demo: seeds an in-memory gateway with a partially received purchase
// order, runs an edit session against it and saves.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"bitbucket.org/oakarsoft/draftdesk_backend/config"
	"bitbucket.org/oakarsoft/draftdesk_backend/gateway"
	"bitbucket.org/oakarsoft/draftdesk_backend/models"
	"bitbucket.org/oakarsoft/draftdesk_backend/workflow"
)

func main() {
	logger := config.GetLogger()
	ctx := context.Background()

	gw := gateway.NewLegacyFieldGateway(gateway.NewMemoryGateway())
	seed(ctx, gw)

	header := &models.OrderHeader{
		PONumber:     "PO-1001",
		SupplierName: "Acme Supply",
		Freight:      decimal.NewFromInt(3),
	}
	session := workflow.NewOrderLineSession(gw, logger, header)

	if err := session.Refresh(ctx); err != nil {
		logger.WithError(err).Fatal("initial load failed")
	}
	fmt.Printf("loaded %d lines, order status: %s\n", session.Len(), session.OrderStatus())

	line := models.NewRegularLine("B-200", decimal.NewFromInt(1), decimal.NewFromInt(5), decimal.NewFromInt(1))
	line.Description = "Gasket set"
	if err := session.Add(line); err != nil {
		logger.WithError(err).Fatal("add line failed")
	}
	if err := session.UpdateField(session.Len()-1, "quantity", "4"); err != nil {
		logger.WithError(err).Fatal("update quantity failed")
	}

	totals := session.Totals()
	fmt.Printf("subtotal %s, total %s\n", totals.Subtotal, totals.Total)

	result, err := session.Save(ctx)
	if err != nil {
		logger.WithError(err).Fatal("save failed")
	}
	if !result.Success {
		for _, msg := range result.Errors {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
	fmt.Printf("saved, %d identified keys, order status: %s\n", session.IdentityMap().Len(), session.OrderStatus())
}

func seed(ctx context.Context, gw gateway.Gateway) {
	received := models.OrderLineFromFields(map[string]interface{}{
		"part_code":    "A-100",
		"description":  "Bearing assembly",
		"line_type":    string(models.LineTypeRegular),
		"source":       string(models.LineSourceActive),
		"quantity":     "2",
		"unit_rate":    "10",
		"discount":     "0",
		"received_qty": "1",
	})

	data := gateway.Record(received.Fields())
	data["po_number"] = "PO-1001"
	if _, err := gw.Create(ctx, string(models.KindOrderLine), data); err != nil {
		panic(err)
	}
}
